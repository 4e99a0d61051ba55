// Package defectdojo provides a Go client for the DefectDojo v2 REST API.
//
// # Features
//
//   - One generic ResourceService per resource type (engagements, products,
//     product types, tests, findings, users)
//   - Transparent limit/offset pagination with a configurable page bound
//   - Uniqueness search by query or by example record
//   - Typed errors for precise error handling
//   - Optional authenticating HTTP proxy
//
// # Quick Start
//
//	cfg, err := config.New("https://dojo.example.com", apiKey, "admin", nil, config.DefaultMaxPageCountForGets)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := defectdojo.NewClient(cfg, defectdojo.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	engagements, err := client.Engagements.Search(ctx, defectdojo.QueryParams{"product": 3})
//
// The client can also be configured from DEFECTDOJO_* environment variables
// with NewClientFromEnv.
//
// # Unique Search
//
// DefectDojo filters are partly fuzzy. SearchUnique fetches every match and
// returns the first record whose identifying fields equal the query:
//
//	engagement, found, err := client.Engagements.SearchUniqueByExample(ctx, &defectdojo.Engagement{
//	    Name:    "nightly",
//	    Product: 3,
//	})
//
// # Error Handling
//
// The package uses typed errors that can be inspected with errors.As:
//
//	finding, err := client.Findings.Get(ctx, 42)
//	if err != nil {
//	    var notFound *defectdojo.NotFoundError
//	    if errors.As(err, &notFound) {
//	        // Handle not found
//	    }
//	}
//
// A search that is still handed a next page after MaxPageCountForGets pages
// fails with *PaginationLoopError and returns no partial result.
//
// # Pagination
//
// Use iterators to stream large result sets:
//
//	for finding, err := range client.Findings.All(ctx, defectdojo.QueryParams{"test": 9}) {
//	    // ...
//	}
//
//	// Or fetch a single page
//	page, err := client.Findings.SearchPage(ctx, query, defectdojo.PageSize, 0)
package defectdojo

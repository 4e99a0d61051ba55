package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dojokit/go-defectdojo"
	"github.com/spf13/cobra"
)

var errNoMatch = errors.New("no matching record")

// resourceOps erases the record type of a ResourceService so commands can
// dispatch on the resource name.
type resourceOps struct {
	get      func(ctx context.Context, id int64) (any, error)
	search   func(ctx context.Context, query defectdojo.QueryParams, limit int) (any, error)
	searchID func(ctx context.Context, query defectdojo.QueryParams, limit int) ([]int64, error)
	find     func(ctx context.Context, query defectdojo.QueryParams) (any, bool, error)
	findLazy func(ctx context.Context, query defectdojo.QueryParams) (any, bool, error)
	delete   func(ctx context.Context, id int64) error
}

func opsFor[T defectdojo.Record](s *defectdojo.ResourceService[T]) resourceOps {
	return resourceOps{
		get: func(ctx context.Context, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		search: func(ctx context.Context, query defectdojo.QueryParams, limit int) (any, error) {
			if limit > 0 {
				return defectdojo.CollectN(s.All(ctx, query), limit)
			}
			return s.Search(ctx, query)
		},
		searchID: func(ctx context.Context, query defectdojo.QueryParams, limit int) ([]int64, error) {
			seq := defectdojo.Map(s.All(ctx, query), func(r T) int64 { return r.ResourceID() })
			if limit > 0 {
				seq = defectdojo.Take(seq, limit)
			}
			return defectdojo.Collect(seq)
		},
		find: func(ctx context.Context, query defectdojo.QueryParams) (any, bool, error) {
			return s.SearchUnique(ctx, query)
		},
		// findLazy stops paging at the first exact match.
		findLazy: func(ctx context.Context, query defectdojo.QueryParams) (any, bool, error) {
			matches := defectdojo.Filter(s.All(ctx, query), func(r T) bool { return r.EqualsQuery(query) })
			record, err := defectdojo.First(matches)
			if errors.Is(err, defectdojo.ErrEmptyIterator) {
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			return record, true, nil
		},
		delete: func(ctx context.Context, id int64) error {
			return s.Delete(ctx, id)
		},
	}
}

func resourcesOf(c *defectdojo.Client) map[string]resourceOps {
	return map[string]resourceOps{
		"engagements":   opsFor(c.Engagements),
		"products":      opsFor(c.Products),
		"product_types": opsFor(c.ProductTypes),
		"tests":         opsFor(c.Tests),
		"findings":      opsFor(c.Findings),
		"users":         opsFor(c.Users),
	}
}

var resourceNames = []string{"engagements", "findings", "product_types", "products", "tests", "users"}

// withResource builds a client and resolves the resource named by the first argument.
func (o *rootOptions) withResource(name string, fn func(ops resourceOps) error) error {
	client, err := o.client()
	if err != nil {
		return err
	}
	defer client.Close()

	resources := resourcesOf(client)
	ops, ok := resources[name]
	if !ok {
		return fmt.Errorf("unknown resource %q, expected one of %s",
			name, strings.Join(slices.Sorted(maps.Keys(resources)), ", "))
	}
	return fn(ops)
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "get RESOURCE ID",
		Short:     "Print one record by id",
		Args:      cobra.ExactArgs(2),
		ValidArgs: resourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withResource(args[0], func(ops resourceOps) error {
				record, err := ops.get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, record)
			})
		},
	}
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		limit   int
		idsOnly bool
	)

	cmd := &cobra.Command{
		Use:       "search RESOURCE [KEY=VALUE...]",
		Short:     "Print all records matching the filters",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: resourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(args[1:])
			if err != nil {
				return err
			}
			return opts.withResource(args[0], func(ops resourceOps) error {
				if idsOnly {
					ids, err := ops.searchID(cmd.Context(), query, limit)
					if err != nil {
						return err
					}
					return printJSON(cmd, ids)
				}
				records, err := ops.search(cmd.Context(), query, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, records)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many records (0 fetches all)")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print only record ids")

	return cmd
}

func newFindCommand(opts *rootOptions) *cobra.Command {
	var lazy bool

	cmd := &cobra.Command{
		Use:       "find RESOURCE KEY=VALUE...",
		Short:     "Print the first record whose fields equal the filters",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: resourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(args[1:])
			if err != nil {
				return err
			}
			return opts.withResource(args[0], func(ops resourceOps) error {
				find := ops.find
				if lazy {
					find = ops.findLazy
				}
				record, found, err := find(cmd.Context(), query)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w in %s for %s", errNoMatch, args[0], strings.Join(args[1:], " "))
				}
				return printJSON(cmd, record)
			})
		},
	}
	cmd.Flags().BoolVar(&lazy, "lazy", false, "stop fetching pages at the first match")

	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "delete RESOURCE ID",
		Short:     "Delete one record by id",
		Args:      cobra.ExactArgs(2),
		ValidArgs: resourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withResource(args[0], func(ops resourceOps) error {
				if err := ops.delete(cmd.Context(), id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", args[0], id)
				return err
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// parseQuery turns KEY=VALUE arguments into query params. Repeated keys become multi-valued.
func parseQuery(args []string) (defectdojo.QueryParams, error) {
	query := make(defectdojo.QueryParams, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected KEY=VALUE", arg)
		}
		switch prev := query[key].(type) {
		case nil:
			query[key] = value
		case string:
			query[key] = []string{prev, value}
		case []string:
			query[key] = append(prev, value)
		}
	}
	return query, nil
}

package defectdojo

import (
	"github.com/dojokit/go-defectdojo/internal/codec"
)

func init() {
	codec.EmptyAsNull[EngagementStatus]()
	codec.EmptyAsNull[EngagementType]()
	codec.EmptyAsNull[Severity]()
}

// Record is implemented by every DefectDojo resource the client can manage.
type Record interface {
	// ResourceID returns the server-assigned id, 0 for unsaved records.
	ResourceID() int64

	// EqualsQuery reports whether the record matches every identifying field named in query.
	// Keys the record does not know are ignored.
	EqualsQuery(query QueryParams) bool
}

// EngagementStatus is the lifecycle state of an engagement.
type EngagementStatus string

const (
	EngagementNotStarted         EngagementStatus = "Not Started"
	EngagementBlocked            EngagementStatus = "Blocked"
	EngagementCancelled          EngagementStatus = "Cancelled"
	EngagementCompleted          EngagementStatus = "Completed"
	EngagementInProgress         EngagementStatus = "In Progress"
	EngagementOnHold             EngagementStatus = "On Hold"
	EngagementWaitingForResource EngagementStatus = "Waiting for Resource"
)

// EngagementType distinguishes interactive engagements from CI/CD runs.
type EngagementType string

const (
	EngagementInteractive EngagementType = "Interactive"
	EngagementCICD        EngagementType = "CI/CD"
)

// Severity of a finding.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// Ptr returns a pointer to v. Useful for optional enum fields.
func Ptr[T any](v T) *T {
	return &v
}

// Engagement represents a DefectDojo engagement.
type Engagement struct {
	ID                 int64             `json:"id,omitempty" url:"id,omitempty"`
	Name               string            `json:"name" url:"name,omitempty"`
	Product            int64             `json:"product" url:"product,omitempty"`
	TargetStart        string            `json:"target_start,omitempty" url:"-"`
	TargetEnd          string            `json:"target_end,omitempty" url:"-"`
	Lead               int64             `json:"lead,omitempty" url:"lead,omitempty"`
	Description        string            `json:"description,omitempty" url:"-"`
	Version            string            `json:"version,omitempty" url:"version,omitempty"`
	BranchTag          string            `json:"branch_tag,omitempty" url:"branch_tag,omitempty"`
	BuildID            string            `json:"build_id,omitempty" url:"build_id,omitempty"`
	CommitHash         string            `json:"commit_hash,omitempty" url:"commit_hash,omitempty"`
	RepoURL            string            `json:"source_code_management_uri,omitempty" url:"-"`
	Status             *EngagementStatus `json:"status,omitempty" url:"status,omitempty"`
	Type               *EngagementType   `json:"engagement_type,omitempty" url:"engagement_type,omitempty"`
	DeduplicationOnEng bool              `json:"deduplication_on_engagement,omitempty" url:"-"`
	Tags               []string          `json:"tags,omitempty" url:"tags,omitempty"`
}

// ResourceID implements Record.
func (e *Engagement) ResourceID() int64 {
	if e == nil {
		return 0
	}
	return e.ID
}

// EqualsQuery implements Record.
func (e *Engagement) EqualsQuery(query QueryParams) bool {
	if e == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":          e.ID,
		"name":        e.Name,
		"product":     e.Product,
		"version":     e.Version,
		"branch_tag":  e.BranchTag,
		"build_id":    e.BuildID,
		"commit_hash": e.CommitHash,
	})
}

// ProductType groups products.
type ProductType struct {
	ID          int64  `json:"id,omitempty" url:"id,omitempty"`
	Name        string `json:"name" url:"name,omitempty"`
	Description string `json:"description,omitempty" url:"-"`
	Critical    bool   `json:"critical_product,omitempty" url:"-"`
	KeyProduct  bool   `json:"key_product,omitempty" url:"-"`
}

// ResourceID implements Record.
func (p *ProductType) ResourceID() int64 {
	if p == nil {
		return 0
	}
	return p.ID
}

// EqualsQuery implements Record.
func (p *ProductType) EqualsQuery(query QueryParams) bool {
	if p == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":   p.ID,
		"name": p.Name,
	})
}

// Product is an application or system under assessment.
type Product struct {
	ID          int64    `json:"id,omitempty" url:"id,omitempty"`
	Name        string   `json:"name" url:"name,omitempty"`
	Description string   `json:"description" url:"-"`
	ProductType int64    `json:"prod_type" url:"prod_type,omitempty"`
	Tags        []string `json:"tags,omitempty" url:"tags,omitempty"`
}

// ResourceID implements Record.
func (p *Product) ResourceID() int64 {
	if p == nil {
		return 0
	}
	return p.ID
}

// EqualsQuery implements Record.
func (p *Product) EqualsQuery(query QueryParams) bool {
	if p == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":        p.ID,
		"name":      p.Name,
		"prod_type": p.ProductType,
	})
}

// Test is a single scan or assessment run inside an engagement.
type Test struct {
	ID          int64    `json:"id,omitempty" url:"id,omitempty"`
	Title       string   `json:"title,omitempty" url:"title,omitempty"`
	Description string   `json:"description,omitempty" url:"-"`
	Engagement  int64    `json:"engagement" url:"engagement,omitempty"`
	TestType    int64    `json:"test_type" url:"test_type,omitempty"`
	TargetStart string   `json:"target_start,omitempty" url:"-"`
	TargetEnd   string   `json:"target_end,omitempty" url:"-"`
	Environment int64    `json:"environment,omitempty" url:"environment,omitempty"`
	Tags        []string `json:"tags,omitempty" url:"tags,omitempty"`
}

// ResourceID implements Record.
func (t *Test) ResourceID() int64 {
	if t == nil {
		return 0
	}
	return t.ID
}

// EqualsQuery implements Record.
func (t *Test) EqualsQuery(query QueryParams) bool {
	if t == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":         t.ID,
		"title":      t.Title,
		"engagement": t.Engagement,
		"test_type":  t.TestType,
	})
}

// Finding is a single vulnerability reported by a test.
type Finding struct {
	ID               int64     `json:"id,omitempty" url:"id,omitempty"`
	Title            string    `json:"title" url:"title,omitempty"`
	Description      string    `json:"description,omitempty" url:"-"`
	Severity         *Severity `json:"severity,omitempty" url:"severity,omitempty"`
	Test             int64     `json:"test" url:"test,omitempty"`
	Date             string    `json:"date,omitempty" url:"-"`
	CWE              int       `json:"cwe,omitempty" url:"cwe,omitempty"`
	Mitigation       string    `json:"mitigation,omitempty" url:"-"`
	Active           *bool     `json:"active,omitempty" url:"active,omitempty"`
	Verified         *bool     `json:"verified,omitempty" url:"verified,omitempty"`
	Duplicate        *bool     `json:"duplicate,omitempty" url:"duplicate,omitempty"`
	FalsePositive    *bool     `json:"false_p,omitempty" url:"false_p,omitempty"`
	UniqueIDFromTool string    `json:"unique_id_from_tool,omitempty" url:"unique_id_from_tool,omitempty"`
	FoundBy          []int64   `json:"found_by,omitempty" url:"-"`
}

// ResourceID implements Record.
func (f *Finding) ResourceID() int64 {
	if f == nil {
		return 0
	}
	return f.ID
}

// EqualsQuery implements Record.
func (f *Finding) EqualsQuery(query QueryParams) bool {
	if f == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":                  f.ID,
		"title":               f.Title,
		"test":                f.Test,
		"severity":            f.Severity,
		"unique_id_from_tool": f.UniqueIDFromTool,
	})
}

// User is a DefectDojo account.
type User struct {
	ID        int64  `json:"id,omitempty" url:"id,omitempty"`
	Username  string `json:"username" url:"username,omitempty"`
	FirstName string `json:"first_name,omitempty" url:"-"`
	LastName  string `json:"last_name,omitempty" url:"-"`
	Email     string `json:"email,omitempty" url:"email,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty" url:"is_active,omitempty"`
}

// ResourceID implements Record.
func (u *User) ResourceID() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// EqualsQuery implements Record.
func (u *User) EqualsQuery(query QueryParams) bool {
	if u == nil {
		return false
	}
	return matchesQuery(query, map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
}

// Page is the paginated list envelope returned by collection endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext returns true if the server announced another page (next is non-null).
func (p *Page[T]) HasNext() bool {
	return p != nil && p.Next != nil
}

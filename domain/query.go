package domain

// Cond is a single field-level filter condition. The concrete variants are
// Eq, In, Gte and Lte; a Filter combines them with logical AND.
type Cond interface {
	isCond()
}

// Eq matches documents whose field at Path equals Value exactly.
type Eq struct {
	Path  string
	Value any
}

// In matches documents whose array-valued field at Path shares at least one
// element with Values.
type In struct {
	Path   string
	Values []any
}

// Gte matches documents whose string field at Path sorts at or after Bound.
// The comparison is plain lexicographic; no time parsing happens.
type Gte struct {
	Path  string
	Bound string
}

// Lte matches documents whose string field at Path sorts at or before Bound.
type Lte struct {
	Path  string
	Bound string
}

func (Eq) isCond()  {}
func (In) isCond()  {}
func (Gte) isCond() {}
func (Lte) isCond() {}

// Filter is a logical AND of conditions. A nil or empty Filter matches every
// document.
type Filter []Cond

// ByID builds a filter that resolves as a direct identifier lookup.
func ByID(id string) Filter {
	return Filter{Eq{Path: IDField, Value: id}}
}

// ID returns the identifier an Eq condition pins the filter to, if any.
func (f Filter) ID() (string, bool) {
	for _, cond := range f {
		eq, ok := cond.(Eq)
		if !ok || eq.Path != IDField {
			continue
		}
		if id, ok := eq.Value.(string); ok {
			return id, true
		}
	}
	return "", false
}

// Update is a single update operation. The concrete variants are Push and
// Pull.
type Update interface {
	isUpdate()
}

// Push appends Value to the array field at Path, creating the field as an
// empty array first when absent.
type Push struct {
	Path  string
	Value any
}

// Pull removes every occurrence of Value from the array field at Path. It is
// a no-op when the field is absent or not array-valued.
type Pull struct {
	Path  string
	Value any
}

func (Push) isUpdate() {}
func (Pull) isUpdate() {}

// Stage is a single aggregation pipeline stage. The concrete variants are
// Unwind, GroupDistinct and SortAsc.
type Stage interface {
	isStage()
}

// Unwind fans a document out over the elements of the array field at Path.
type Unwind struct {
	Path string
}

// GroupDistinct groups unwound values, producing one {_id: value} document
// per distinct value.
type GroupDistinct struct{}

// SortAsc sorts result documents ascending by identifier. The recognized
// pipeline shape sorts ascending regardless, so this stage is optional.
type SortAsc struct{}

func (Unwind) isStage()        {}
func (GroupDistinct) isStage() {}
func (SortAsc) isStage()       {}

// Pipeline is an ordered list of aggregation stages.
type Pipeline []Stage

// DistinctValues reports whether the pipeline has the single recognized
// shape, unwind followed by group-distinct with an optional trailing sort,
// and returns the unwound path when it does.
func (p Pipeline) DistinctValues() (string, bool) {
	if len(p) < 2 || len(p) > 3 {
		return "", false
	}
	unwind, ok := p[0].(Unwind)
	if !ok {
		return "", false
	}
	if _, ok := p[1].(GroupDistinct); !ok {
		return "", false
	}
	if len(p) == 3 {
		if _, ok := p[2].(SortAsc); !ok {
			return "", false
		}
	}
	return unwind.Path, true
}

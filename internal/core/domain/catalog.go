package domain

// Catalog is the process-scoped, read-only snapshot of the assessment store.
// It is constructed once at startup and shared by reference across concurrent
// requests; nothing mutates it after construction.
type Catalog struct {
	assessments []Assessment
	byID        map[int]*Assessment
}

// NewCatalog builds a snapshot from loaded assessments. Input order is
// preserved; duplicate ids keep the first occurrence.
func NewCatalog(assessments []Assessment) *Catalog {
	c := &Catalog{
		assessments: make([]Assessment, 0, len(assessments)),
		byID:        make(map[int]*Assessment, len(assessments)),
	}
	for _, a := range assessments {
		if _, ok := c.byID[a.ID]; ok {
			continue
		}
		c.assessments = append(c.assessments, a)
		c.byID[a.ID] = &c.assessments[len(c.assessments)-1]
	}
	return c
}

// ByID returns the assessment with the given id, or nil.
func (c *Catalog) ByID(id int) *Assessment {
	return c.byID[id]
}

// All returns the snapshot's assessments in load order. Callers must treat
// the slice as read-only.
func (c *Catalog) All() []Assessment {
	return c.assessments
}

// Len returns the number of assessments in the snapshot.
func (c *Catalog) Len() int {
	return len(c.assessments)
}

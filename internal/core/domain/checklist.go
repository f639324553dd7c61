package domain

// ChecklistItem is one safety step of a delivery.
type ChecklistItem struct {
	ID        int    `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// Checklist is the ordered SOP list shown in delivery mode.
type Checklist []ChecklistItem

// NewDeliveryChecklist returns the standard fueling SOP, all unchecked.
func NewDeliveryChecklist() Checklist {
	return Checklist{
		{ID: 1, Task: "Van in park with parking brake engaged"},
		{ID: 2, Task: "Grounding cable connected to vehicle"},
		{ID: 3, Task: "Correct fuel type selected (Regular)"},
		{ID: 4, Task: "Fuel cap removed and nozzle inserted"},
		{ID: 5, Task: "Customer vehicle verified (plate: ABC-1234)"},
	}
}

// Toggle flips item id.
func (c Checklist) Toggle(id int) error {
	for i := range c {
		if c[i].ID == id {
			c[i].Completed = !c[i].Completed
			return nil
		}
	}
	return ErrChecklistItem
}

// CompletedCount is the number of checked items.
func (c Checklist) CompletedCount() int {
	n := 0
	for _, item := range c {
		if item.Completed {
			n++
		}
	}
	return n
}

// Complete is true when every item is checked, regardless of the order they
// were checked in. An empty list is never complete.
func (c Checklist) Complete() bool {
	return len(c) > 0 && c.CompletedCount() == len(c)
}

package domain

// Index is the set of conversations for one Key plus the current pointer.
// Methods never mutate the receiver; they return an updated copy.
type Index struct {
	Conversations []Conversation `json:"conversations"`
	CurrentID     string         `json:"currentId"`
}

func (ix Index) Empty() bool { return len(ix.Conversations) == 0 }

// Find returns the position of the conversation with the given id, or -1.
func (ix Index) Find(id string) int {
	for i, c := range ix.Conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the conversation the pointer references.
func (ix Index) Current() (Conversation, bool) {
	if i := ix.Find(ix.CurrentID); i >= 0 {
		return ix.Conversations[i], true
	}
	return Conversation{}, false
}

// Prepend places c first and makes it current.
func (ix Index) Prepend(c Conversation) Index {
	convs := make([]Conversation, 0, len(ix.Conversations)+1)
	convs = append(convs, c)
	convs = append(convs, ix.Conversations...)
	return Index{Conversations: convs, CurrentID: c.ID}
}

// Replace swaps in c for the stored conversation with the same id.
func (ix Index) Replace(c Conversation) (Index, bool) {
	i := ix.Find(c.ID)
	if i < 0 {
		return ix, false
	}
	convs := append([]Conversation(nil), ix.Conversations...)
	convs[i] = c
	return Index{Conversations: convs, CurrentID: ix.CurrentID}, true
}

// Without drops the conversation with the given id. When it was current the
// pointer moves to the first remaining conversation, or clears when none remain.
func (ix Index) Without(id string) (Index, bool) {
	i := ix.Find(id)
	if i < 0 {
		return ix, false
	}
	convs := make([]Conversation, 0, len(ix.Conversations)-1)
	convs = append(convs, ix.Conversations[:i]...)
	convs = append(convs, ix.Conversations[i+1:]...)
	out := Index{Conversations: convs, CurrentID: ix.CurrentID}
	if out.CurrentID == id {
		out.CurrentID = ""
		if len(convs) > 0 {
			out.CurrentID = convs[0].ID
		}
	}
	return out, true
}

// WithCurrent moves the pointer; unknown ids leave the index untouched.
func (ix Index) WithCurrent(id string) (Index, bool) {
	if ix.Find(id) < 0 {
		return ix, false
	}
	ix.Conversations = append([]Conversation(nil), ix.Conversations...)
	ix.CurrentID = id
	return ix, true
}

// Repair restores the pointer invariant after loading from persistence, where
// the list and pointer are written separately.
func (ix Index) Repair() Index {
	if ix.Empty() {
		ix.CurrentID = ""
		return ix
	}
	if ix.Find(ix.CurrentID) < 0 {
		ix.CurrentID = ix.Conversations[0].ID
	}
	return ix
}

// Valid reports whether the pointer invariant holds.
func (ix Index) Valid() bool {
	if ix.Empty() {
		return ix.CurrentID == ""
	}
	return ix.Find(ix.CurrentID) >= 0
}

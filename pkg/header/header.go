package header

// Append keys hold commentary rather than values and may repeat.
const (
	KeyComment = "COMMENT"
	KeyHistory = "HISTORY"
	KeyBlank   = ""
)

// Card is one keyword record.
type Card struct {
	Key     string
	Value   any
	Comment string
}

// Header is an ordered set of cards. The zero value is an empty header.
type Header struct {
	cards []Card
}

// IsAppendKey reports whether key is multi-valued.
func IsAppendKey(key string) bool {
	switch key {
	case KeyComment, KeyHistory, KeyBlank:
		return true
	}
	return false
}

// New returns a header holding cards. Repeated scalar keys keep their
// first position and take the last value.
func New(cards ...Card) *Header {
	h := &Header{cards: make([]Card, 0, len(cards))}
	for _, c := range cards {
		h.SetCard(c)
	}
	return h
}

// Len returns the number of cards, including append-key cards.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.cards)
}

// Cards returns a copy of all cards in order.
func (h *Header) Cards() []Card {
	if h == nil {
		return nil
	}
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Keys returns the scalar keys in order.
func (h *Header) Keys() []string {
	if h == nil {
		return nil
	}
	keys := make([]string, 0, len(h.cards))
	for _, c := range h.cards {
		if !IsAppendKey(c.Key) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (h *Header) index(key string) int {
	if h == nil {
		return -1
	}
	for i := range h.cards {
		if h.cards[i].Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present.
func (h *Header) Has(key string) bool {
	return h.index(key) >= 0
}

// Get returns the value of the first card named key.
func (h *Header) Get(key string) (any, bool) {
	i := h.index(key)
	if i < 0 {
		return nil, false
	}
	return h.cards[i].Value, true
}

// Card returns the first card named key.
func (h *Header) Card(key string) (Card, bool) {
	i := h.index(key)
	if i < 0 {
		return Card{}, false
	}
	return h.cards[i], true
}

// GetString returns the value of key when it holds a string.
func (h *Header) GetString(key string) (string, bool) {
	v, ok := h.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat returns the value of key as float64 when it holds a number.
func (h *Header) GetFloat(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// GetInt returns the value of key when it holds an integer.
func (h *Header) GetInt(key string) (int, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	}
	return 0, false
}

// Set assigns value to key. An existing scalar card keeps its position
// and comment; append keys always gain a new card.
func (h *Header) Set(key string, value any) {
	if i := h.index(key); i >= 0 && !IsAppendKey(key) {
		h.cards[i].Value = value
		return
	}
	h.cards = append(h.cards, Card{Key: key, Value: value})
}

// SetCard assigns value and comment of c to c.Key.
func (h *Header) SetCard(c Card) {
	if i := h.index(c.Key); i >= 0 && !IsAppendKey(c.Key) {
		h.cards[i] = c
		return
	}
	h.cards = append(h.cards, c)
}

// Add appends a card without replacing existing ones. It is meant for
// append keys; for scalar keys use Set.
func (h *Header) Add(key string, value any, comment string) {
	h.cards = append(h.cards, Card{Key: key, Value: value, Comment: comment})
}

// Comment returns the comment of the first card named key.
func (h *Header) Comment(key string) string {
	c, _ := h.Card(key)
	return c.Comment
}

// SetComment replaces the comment of key and reports whether key exists.
func (h *Header) SetComment(key, comment string) bool {
	i := h.index(key)
	if i < 0 {
		return false
	}
	h.cards[i].Comment = comment
	return true
}

// Values returns the values of every card named key, in order.
func (h *Header) Values(key string) []any {
	if h == nil {
		return nil
	}
	var out []any
	for _, c := range h.cards {
		if c.Key == key {
			out = append(out, c.Value)
		}
	}
	return out
}

// Delete removes every card named key and reports whether any existed.
func (h *Header) Delete(key string) bool {
	if h == nil {
		return false
	}
	n := 0
	for _, c := range h.cards {
		if c.Key != key {
			h.cards[n] = c
			n++
		}
	}
	removed := n != len(h.cards)
	h.cards = h.cards[:n]
	return removed
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	return &Header{cards: h.Cards()}
}

// Filter returns a new header with the cards for which keep is true.
func (h *Header) Filter(keep func(Card) bool) *Header {
	out := &Header{}
	if h == nil {
		return out
	}
	for _, c := range h.cards {
		if keep(c) {
			out.cards = append(out.cards, c)
		}
	}
	return out
}

package model

// Item is one scored question. Items are immutable once the study is
// running and are shared read-only by all sessions.
type Item struct {
	ID         string        `json:"id"`
	Prompt     LocalizedText `json:"prompt"`
	SubScale   string        `json:"subScale"`
	Reversed   bool          `json:"reversed"`
	Categories int           `json:"categories"` // response categories, answers are 1..Categories
}

// SubScale groups items into one named score with localized labels for
// the results view.
type SubScale struct {
	Key   string        `yaml:"key" json:"key"`
	Label LocalizedText `yaml:"label" json:"label"`
	// Band cut points on the mean score: below Low is "low", below High
	// is "medium", otherwise "high".
	LowCut  float64 `yaml:"low_cut" json:"lowCut"`
	HighCut float64 `yaml:"high_cut" json:"highCut"`
}

// ItemBank is the immutable item catalog plus its sub-scale index.
type ItemBank struct {
	items     map[string]Item
	order     []string
	subScales map[string]SubScale
	byScale   map[string][]string
	scaleKeys []string
}

func NewItemBank(items []Item, scales []SubScale) *ItemBank {
	b := &ItemBank{
		items:     make(map[string]Item, len(items)),
		subScales: make(map[string]SubScale, len(scales)),
		byScale:   make(map[string][]string),
	}
	for _, s := range scales {
		b.subScales[s.Key] = s
		b.scaleKeys = append(b.scaleKeys, s.Key)
	}
	for _, it := range items {
		b.items[it.ID] = it
		b.order = append(b.order, it.ID)
		b.byScale[it.SubScale] = append(b.byScale[it.SubScale], it.ID)
	}
	return b
}

func (b *ItemBank) Item(id string) (Item, bool) {
	it, ok := b.items[id]
	return it, ok
}

// ItemIDs returns all item ids in bank order.
func (b *ItemBank) ItemIDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

func (b *ItemBank) SubScale(key string) (SubScale, bool) {
	s, ok := b.subScales[key]
	return s, ok
}

// SubScaleKeys returns scale keys in declaration order.
func (b *ItemBank) SubScaleKeys() []string {
	out := make([]string, len(b.scaleKeys))
	copy(out, b.scaleKeys)
	return out
}

// ScaleItems returns the item ids of one sub-scale in bank order.
func (b *ItemBank) ScaleItems(key string) []string {
	ids := b.byScale[key]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (b *ItemBank) Len() int {
	return len(b.order)
}

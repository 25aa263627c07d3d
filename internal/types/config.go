package types

import "sort"

// Document is one configuration object as stored in a storage backend.
type Document map[string]any

// SimpleConfigType is the type of items whose name matches no known type
// prefix, e.g. "system.site".
const SimpleConfigType = "system.simple"

type ConfigItem struct {
	Name         string
	Type         string
	Label        string
	Package      string
	Dependencies []string
}

// ConfigCollection is the ordered set of configuration items visible in
// one operation.  Items are sorted by name.
type ConfigCollection struct {
	items []ConfigItem
	index map[string]int
}

func NewConfigCollection(items []ConfigItem) ConfigCollection {
	ordered := append([]ConfigItem(nil), items...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})
	index := make(map[string]int, len(ordered))
	for i, item := range ordered {
		index[item.Name] = i
	}
	return ConfigCollection{items: ordered, index: index}
}

func (c ConfigCollection) Get(name string) (ConfigItem, bool) {
	idx, ok := c.index[name]
	if !ok {
		return ConfigItem{}, false
	}
	return c.items[idx], true
}

func (c ConfigCollection) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

func (c ConfigCollection) Items() []ConfigItem {
	return append([]ConfigItem(nil), c.items...)
}

func (c ConfigCollection) Names() []string {
	names := make([]string, 0, len(c.items))
	for _, item := range c.items {
		names = append(names, item.Name)
	}
	return names
}

func (c ConfigCollection) Len() int {
	return len(c.items)
}

// Types returns the distinct item types in sorted order.
func (c ConfigCollection) Types() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, item := range c.items {
		if _, ok := seen[item.Type]; ok {
			continue
		}
		seen[item.Type] = struct{}{}
		out = append(out, item.Type)
	}
	sort.Strings(out)
	return out
}

package domain

import "errors"

// ErrUnknownMenuKey indicates a toggle referenced a key outside the tree.
var ErrUnknownMenuKey = errors.New("unknown menu key")

// MenuNode is a navigational entry. A node with children acts as a group; a
// leaf carries an href. The tree is two levels deep in practice but the
// algorithms below are depth-agnostic.
type MenuNode struct {
	Key            string     `json:"id"`
	Label          string     `json:"label"`
	Href           string     `json:"href,omitempty"`
	Hidden         bool       `json:"hidden,omitempty"`
	DefaultChildID string     `json:"defaultChildId,omitempty"`
	Children       []MenuNode `json:"children,omitempty"`
}

// DefaultMenuTree is the built-in dashboard navigation. SUPER may replace it
// through the customization document.
func DefaultMenuTree() []MenuNode {
	return []MenuNode{
		{Key: "dashboard", Label: "Dashboard", Href: "/dashboard"},
		{
			Key:   "management",
			Label: "Complexes & Residents",
			Children: []MenuNode{
				{Key: "complexes", Label: "Complexes", Href: "/dashboard/complexes"},
				{Key: "buildings", Label: "Buildings", Href: "/dashboard/buildings"},
				{Key: "resident-qr", Label: "Residents & QR", Href: "/dashboard/resident-qr"},
			},
		},
		{Key: "menus", Label: "Role Menus", Href: "/dashboard/menus"},
		{Key: "gas", Label: "Gas Metering", Href: "/dashboard/gas"},
		{
			Key:   "ads",
			Label: "News & Ads",
			Children: []MenuNode{
				{Key: "news", Label: "News", Href: "/dashboard/ads/news"},
				{Key: "ads-board", Label: "Ads", Href: "/dashboard/ads/ads"},
			},
		},
		{Key: "logs", Label: "Activity Log", Href: "/dashboard/logs"},
		{Key: "settings", Label: "Settings", Href: "/dashboard/settings"},
	}
}

// MenuRow is one entry of the flattened tree; depth is presentation indent
// only and carries no semantics.
type MenuRow struct {
	Key    string
	Label  string
	Depth  int
	Hidden bool
}

// FlattenMenus lists the tree in pre-order, preserving tree order.
func FlattenMenus(nodes []MenuNode) []MenuRow {
	return flattenMenus(nodes, 0)
}

func flattenMenus(nodes []MenuNode, depth int) []MenuRow {
	rows := make([]MenuRow, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, MenuRow{Key: node.Key, Label: node.Label, Depth: depth, Hidden: node.Hidden})
		if len(node.Children) > 0 {
			rows = append(rows, flattenMenus(node.Children, depth+1)...)
		}
	}
	return rows
}

// MenuIndex holds ancestor/descendant closures computed once from a tree so
// cascade decisions need no rendering context.
type MenuIndex struct {
	ancestors   map[string][]string
	descendants map[string][]string
	order       []string
}

// NewMenuIndex builds the closure index for a menu tree.
func NewMenuIndex(nodes []MenuNode) *MenuIndex {
	idx := &MenuIndex{
		ancestors:   make(map[string][]string),
		descendants: make(map[string][]string),
	}
	idx.walk(nodes, nil)
	return idx
}

func (idx *MenuIndex) walk(nodes []MenuNode, path []string) {
	for _, node := range nodes {
		idx.order = append(idx.order, node.Key)
		idx.ancestors[node.Key] = append([]string(nil), path...)
		for _, ancestor := range path {
			idx.descendants[ancestor] = append(idx.descendants[ancestor], node.Key)
		}
		if len(node.Children) > 0 {
			idx.walk(node.Children, append(path, node.Key))
		}
	}
}

// Contains reports whether the key belongs to the indexed tree.
func (idx *MenuIndex) Contains(key string) bool {
	_, ok := idx.ancestors[key]
	return ok
}

// Ancestors returns the chain from root to parent for a key.
func (idx *MenuIndex) Ancestors(key string) []string {
	return idx.ancestors[key]
}

// Descendants returns every key beneath the given key, in pre-order.
func (idx *MenuIndex) Descendants(key string) []string {
	return idx.descendants[key]
}

// MenuToggle is one (menuKey, enabled) pair produced by a cascade.
type MenuToggle struct {
	MenuKey string
	Enabled bool
}

// SetToggle expands a single toggle into the full cascade set: enabling a
// key forces every ancestor enabled, disabling it forces every descendant
// disabled. The toggled key itself comes first; order within the cascade
// follows the tree.
func (idx *MenuIndex) SetToggle(key string, enabled bool) ([]MenuToggle, error) {
	if !idx.Contains(key) {
		return nil, ErrUnknownMenuKey
	}

	toggles := []MenuToggle{{MenuKey: key, Enabled: enabled}}
	if enabled {
		for _, ancestor := range idx.Ancestors(key) {
			toggles = append(toggles, MenuToggle{MenuKey: ancestor, Enabled: true})
		}
		return toggles, nil
	}

	for _, descendant := range idx.Descendants(key) {
		toggles = append(toggles, MenuToggle{MenuKey: descendant, Enabled: false})
	}
	return toggles, nil
}

// MenuConfigEntry is one persisted enablement rule, keyed by
// (owner_role, target_role, menu_key). Last writer per owner wins at the
// row level; owners are merged by precedence at read time.
type MenuConfigEntry struct {
	OwnerRole  RoleKey
	TargetRole RoleKey
	MenuKey    string
	IsEnabled  bool
	UpdatedBy  *string
}

// MergeEffectiveConfig resolves rows sharing a menu key: the entry from the
// highest-precedence owner wins (SUPER over MAIN over SUB), regardless of
// which row was written last. Keys without any row stay absent; the
// authoritative default is disabled.
func MergeEffectiveConfig(rows []MenuConfigEntry) map[string]bool {
	winners := make(map[string]MenuConfigEntry, len(rows))
	for _, row := range rows {
		prev, ok := winners[row.MenuKey]
		if !ok || OwnerPrecedence(row.OwnerRole) < OwnerPrecedence(prev.OwnerRole) {
			winners[row.MenuKey] = row
		}
	}

	effective := make(map[string]bool, len(winners))
	for key, row := range winners {
		effective[key] = row.IsEnabled
	}
	return effective
}

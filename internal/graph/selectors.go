package graph

import (
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// SelectorKind tags which field of a Selector is populated.
type SelectorKind int

const (
	SelectorNodeType SelectorKind = iota
	SelectorEdgeType
	SelectorLabelKey
	SelectorLabelKeyValue
	SelectorIdentifierScheme
	SelectorIdentifierSchemeValue
	SelectorJurisdiction
	SelectorName
)

// Selector is a single predicate value contributed to a SelectorSet group.
// Use the constructor functions below rather than building one directly.
type Selector struct {
	Kind         SelectorKind
	NodeType     omtsf.NodeTypeTag
	EdgeType     omtsf.EdgeTypeTag
	Key          string
	Value        string
	Jurisdiction omtsf.CountryCode
	Name         string
}

func NodeTypeSelector(t omtsf.NodeTypeTag) Selector {
	return Selector{Kind: SelectorNodeType, NodeType: t}
}

func EdgeTypeSelector(t omtsf.EdgeTypeTag) Selector {
	return Selector{Kind: SelectorEdgeType, EdgeType: t}
}

func LabelKeySelector(key string) Selector {
	return Selector{Kind: SelectorLabelKey, Key: key}
}

func LabelKeyValueSelector(key, value string) Selector {
	return Selector{Kind: SelectorLabelKeyValue, Key: key, Value: value}
}

func IdentifierSchemeSelector(scheme string) Selector {
	return Selector{Kind: SelectorIdentifierScheme, Key: scheme}
}

func IdentifierSchemeValueSelector(scheme, value string) Selector {
	return Selector{Kind: SelectorIdentifierSchemeValue, Key: scheme, Value: value}
}

func JurisdictionSelector(c omtsf.CountryCode) Selector {
	return Selector{Kind: SelectorJurisdiction, Jurisdiction: c}
}

func NameSelector(name string) Selector {
	return Selector{Kind: SelectorName, Name: name}
}

// SelectorSet groups selector values by predicate kind. Matching is a
// conjunction (AND) across groups and a disjunction (OR) of the values
// within a group; an empty group imposes no constraint at all (spec.md
// §4.8). An entirely empty SelectorSet is a universal match, handled by
// the caller (SelectorMatch, SelectorSubgraph) before reaching the group
// logic here.
//
// Grounding note: the upstream selectors.rs/queries.rs sources were not
// present in the retrieval pack (only graph/extraction.rs was retrieved).
// The group list and the node/edge applicability split below are grounded
// on spec.md §4.8's prose plus extraction.rs's can_use_node_type_index/
// can_use_edge_type_index helpers, which show that label selectors apply
// to both nodes and edges (both functions require label_keys/label_key_values
// empty before using the type-index shortcut) while node_types/jurisdictions/
// names are node-only. Identifier selectors are extended to edges here since
// omtsf.Edge carries its own Identifiers slice; Jurisdiction/Name have no
// edge-side field to match against and so remain node-only.
type SelectorSet struct {
	NodeTypes              []omtsf.NodeTypeTag
	EdgeTypes              []omtsf.EdgeTypeTag
	LabelKeys              []string
	LabelKeyValues         [][2]string
	IdentifierSchemes      []string
	IdentifierSchemeValues [][2]string
	Jurisdictions          []omtsf.CountryCode
	Names                  []string
}

// NewSelectorSet groups a flat list of Selector values into a SelectorSet.
func NewSelectorSet(selectors ...Selector) SelectorSet {
	var ss SelectorSet
	for _, s := range selectors {
		switch s.Kind {
		case SelectorNodeType:
			ss.NodeTypes = append(ss.NodeTypes, s.NodeType)
		case SelectorEdgeType:
			ss.EdgeTypes = append(ss.EdgeTypes, s.EdgeType)
		case SelectorLabelKey:
			ss.LabelKeys = append(ss.LabelKeys, s.Key)
		case SelectorLabelKeyValue:
			ss.LabelKeyValues = append(ss.LabelKeyValues, [2]string{s.Key, s.Value})
		case SelectorIdentifierScheme:
			ss.IdentifierSchemes = append(ss.IdentifierSchemes, s.Key)
		case SelectorIdentifierSchemeValue:
			ss.IdentifierSchemeValues = append(ss.IdentifierSchemeValues, [2]string{s.Key, s.Value})
		case SelectorJurisdiction:
			ss.Jurisdictions = append(ss.Jurisdictions, s.Jurisdiction)
		case SelectorName:
			ss.Names = append(ss.Names, s.Name)
		}
	}
	return ss
}

// IsEmpty reports whether ss carries no predicates at all (universal match).
func (ss SelectorSet) IsEmpty() bool {
	return len(ss.NodeTypes) == 0 && len(ss.EdgeTypes) == 0 && len(ss.LabelKeys) == 0 &&
		len(ss.LabelKeyValues) == 0 && len(ss.IdentifierSchemes) == 0 &&
		len(ss.IdentifierSchemeValues) == 0 && len(ss.Jurisdictions) == 0 && len(ss.Names) == 0
}

// HasNodeSelectors reports whether any node-applicable group is non-empty.
func (ss SelectorSet) HasNodeSelectors() bool {
	return len(ss.NodeTypes) > 0 || len(ss.LabelKeys) > 0 || len(ss.LabelKeyValues) > 0 ||
		len(ss.IdentifierSchemes) > 0 || len(ss.IdentifierSchemeValues) > 0 ||
		len(ss.Jurisdictions) > 0 || len(ss.Names) > 0
}

// HasEdgeSelectors reports whether any edge-applicable group is non-empty.
func (ss SelectorSet) HasEdgeSelectors() bool {
	return len(ss.EdgeTypes) > 0 || len(ss.LabelKeys) > 0 || len(ss.LabelKeyValues) > 0 ||
		len(ss.IdentifierSchemes) > 0 || len(ss.IdentifierSchemeValues) > 0
}

// MatchesNode evaluates ss against a single node.
func (ss SelectorSet) MatchesNode(n omtsf.Node) bool {
	if len(ss.NodeTypes) > 0 && !nodeTypeIn(n.NodeType, ss.NodeTypes) {
		return false
	}
	if len(ss.LabelKeys) > 0 && !labelsHaveKey(n.Labels, ss.LabelKeys) {
		return false
	}
	if len(ss.LabelKeyValues) > 0 && !labelsHaveKeyValue(n.Labels, ss.LabelKeyValues) {
		return false
	}
	if len(ss.IdentifierSchemes) > 0 && !identifiersHaveScheme(n.Identifiers, ss.IdentifierSchemes) {
		return false
	}
	if len(ss.IdentifierSchemeValues) > 0 && !identifiersHaveSchemeValue(n.Identifiers, ss.IdentifierSchemeValues) {
		return false
	}
	if len(ss.Jurisdictions) > 0 && !jurisdictionIn(n.Jurisdiction, ss.Jurisdictions) {
		return false
	}
	if len(ss.Names) > 0 && !nameMatchesAny(n.Name, ss.Names) {
		return false
	}
	return true
}

// MatchesEdge evaluates ss against a single edge.
func (ss SelectorSet) MatchesEdge(e omtsf.Edge) bool {
	if len(ss.EdgeTypes) > 0 && !edgeTypeIn(e.EdgeType, ss.EdgeTypes) {
		return false
	}
	if len(ss.LabelKeys) > 0 && !labelsHaveKey(e.Properties.Labels, ss.LabelKeys) {
		return false
	}
	if len(ss.LabelKeyValues) > 0 && !labelsHaveKeyValue(e.Properties.Labels, ss.LabelKeyValues) {
		return false
	}
	if len(ss.IdentifierSchemes) > 0 && !identifiersHaveScheme(e.Identifiers, ss.IdentifierSchemes) {
		return false
	}
	if len(ss.IdentifierSchemeValues) > 0 && !identifiersHaveSchemeValue(e.Identifiers, ss.IdentifierSchemeValues) {
		return false
	}
	return true
}

func nodeTypeIn(t omtsf.NodeTypeTag, types []omtsf.NodeTypeTag) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

func edgeTypeIn(t omtsf.EdgeTypeTag, types []omtsf.EdgeTypeTag) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

func labelsHaveKey(labels []omtsf.Label, keys []string) bool {
	for _, l := range labels {
		for _, k := range keys {
			if l.Key == k {
				return true
			}
		}
	}
	return false
}

func labelsHaveKeyValue(labels []omtsf.Label, pairs [][2]string) bool {
	for _, l := range labels {
		if l.Value == nil {
			continue
		}
		for _, p := range pairs {
			if l.Key == p[0] && *l.Value == p[1] {
				return true
			}
		}
	}
	return false
}

func identifiersHaveScheme(ids []omtsf.Identifier, schemes []string) bool {
	for _, id := range ids {
		for _, s := range schemes {
			if id.Scheme == s {
				return true
			}
		}
	}
	return false
}

func identifiersHaveSchemeValue(ids []omtsf.Identifier, pairs [][2]string) bool {
	for _, id := range ids {
		for _, p := range pairs {
			if id.Scheme == p[0] && id.Value == p[1] {
				return true
			}
		}
	}
	return false
}

func jurisdictionIn(j *omtsf.CountryCode, wanted []omtsf.CountryCode) bool {
	if j == nil {
		return false
	}
	for _, w := range wanted {
		if *j == w {
			return true
		}
	}
	return false
}

func nameMatchesAny(name *string, substrings []string) bool {
	if name == nil {
		return false
	}
	lower := strings.ToLower(*name)
	for _, s := range substrings {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func canUseNodeTypeIndex(ss SelectorSet) bool {
	return len(ss.NodeTypes) > 0 && len(ss.LabelKeys) == 0 && len(ss.LabelKeyValues) == 0 &&
		len(ss.IdentifierSchemes) == 0 && len(ss.IdentifierSchemeValues) == 0 &&
		len(ss.Jurisdictions) == 0 && len(ss.Names) == 0
}

func canUseEdgeTypeIndex(ss SelectorSet) bool {
	return len(ss.EdgeTypes) > 0 && len(ss.LabelKeys) == 0 && len(ss.LabelKeyValues) == 0
}

package domain

import (
	"sort"
	"strings"
)

// RelationPair states that operating Source changes the state of Target.
type RelationPair struct {
	Source string
	Target string
}

func (p RelationPair) key() string {
	a, b := p.Source, p.Target
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func (p RelationPair) String() string {
	return p.Source + "," + p.Target
}

// RelationSet collapses pairs that name the same two entities, in either
// order. The orientation of the first insertion is kept.
type RelationSet struct {
	pairs map[string]RelationPair
}

func NewRelationSet(pairs ...RelationPair) RelationSet {
	set := RelationSet{}
	for _, pair := range pairs {
		set.Add(pair.Source, pair.Target)
	}
	return set
}

func normalizedPair(source, target string) RelationPair {
	return RelationPair{Source: strings.TrimSpace(source), Target: strings.TrimSpace(target)}
}

// Add inserts the pair and reports whether it was new.
func (s *RelationSet) Add(source, target string) bool {
	pair := normalizedPair(source, target)
	if s.pairs == nil {
		s.pairs = map[string]RelationPair{}
	}

	key := pair.key()
	if _, ok := s.pairs[key]; ok {
		return false
	}
	s.pairs[key] = pair
	return true
}

func (s RelationSet) Contains(source, target string) bool {
	_, ok := s.pairs[normalizedPair(source, target).key()]
	return ok
}

func (s RelationSet) Len() int {
	return len(s.pairs)
}

// Pairs returns the pairs sorted by source then target.
func (s RelationSet) Pairs() []RelationPair {
	pairs := make([]RelationPair, 0, len(s.pairs))
	for _, pair := range s.pairs {
		pairs = append(pairs, pair)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Target < pairs[j].Target
	})
	return pairs
}

func (s RelationSet) Equal(other RelationSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for key := range s.pairs {
		if _, ok := other.pairs[key]; !ok {
			return false
		}
	}
	return true
}

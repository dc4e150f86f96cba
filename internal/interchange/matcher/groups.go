package matcher

import "contactsync/internal/interchange/model"

// Group returns the sets of contacts linked by a shared email or name+company
// key, transitively. Input order is kept inside each group and groups are
// ordered by their first member, so with input sorted by creation time the
// first member of every group is its earliest record. Singletons are omitted.
func Group(contacts []*model.Contact) [][]*model.Contact {
	uf := newUnionFind(len(contacts))
	owners := make(map[string]int, 2*len(contacts))

	link := func(key string, i int) {
		if j, ok := owners[key]; ok {
			uf.union(j, i)
			return
		}
		owners[key] = i
	}
	for i, c := range contacts {
		if k := EmailKey(c); k != "" {
			link("e:"+k, i)
		}
		if k := NameCompanyKey(c); k != "" {
			link("n:"+k, i)
		}
	}

	byRoot := make(map[int][]*model.Contact)
	var roots []int
	for i, c := range contacts {
		r := uf.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], c)
	}

	var groups [][]*model.Contact
	for _, r := range roots {
		if len(byRoot[r]) > 1 {
			groups = append(groups, byRoot[r])
		}
	}
	return groups
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union keeps the smaller index as root so roots follow input order.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

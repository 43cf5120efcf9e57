package runtime

import (
	"github.com/mitchellh/mapstructure"
	"k8s.io/klog/v2"
	"sort"
	"strings"
)

type lessTypeFunc func(d1, d2 Device) bool

type typeSorter struct {
	ds        []Device
	lessFuncs []lessTypeFunc
}

func ByDevice(less ...lessTypeFunc) *typeSorter {
	return &typeSorter{
		lessFuncs: less,
	}
}

func (ms *typeSorter) Sort(ds []Device) {
	ms.ds = ds
	sort.Sort(ms)
}

func (ms *typeSorter) Len() int {
	return len(ms.ds)
}

func (ms *typeSorter) Swap(i, j int) {
	ms.ds[i], ms.ds[j] = ms.ds[j], ms.ds[i]
}

func (ms *typeSorter) Less(i, j int) bool {
	return ms.less(ms.ds[i], ms.ds[j])
}

func (ms *typeSorter) less(p, q Device) bool {
	// Try all but the last comparison.
	var k int
	for k = 0; k < len(ms.lessFuncs)-1; k++ {
		less := ms.lessFuncs[k]
		switch {
		case less(p, q):
			return true
		case less(q, p):
			return false
		}
	}
	return ms.lessFuncs[k](p, q)
}

type NameFilterFunc struct {
	Eq         string
	In         []string
	Contains   string
	StartsWith string
	EndsWith   string
}

// DeviceFilter is the JSON body of the ?filter= query. Name is either a plain
// string or a NameFilterFunc object.
type DeviceFilter struct {
	Name          interface{} `json:"name"`
	CollectStatus string      `json:"collectStatus"`
}

type Predicate func(d Device) bool

func ParseDeviceFilter(filter *DeviceFilter) []Predicate {
	predicates := make([]Predicate, 0)

	if len(filter.CollectStatus) > 0 {
		predicates = append(predicates, func(d Device) bool {
			return d.GetCollectStatus() == filter.CollectStatus
		})
	}

	if filter.Name == nil {
		return predicates
	}
	if name, ok := filter.Name.(string); ok {
		predicates = append(predicates, func(d Device) bool {
			return name == d.GetName()
		})
		return predicates
	}

	var ff NameFilterFunc
	if err := mapstructure.Decode(filter.Name, &ff); err != nil {
		klog.V(3).InfoS("Failed to parse filter.name", "err", err)
	}
	if len(ff.Eq) > 0 {
		predicates = append(predicates, func(d Device) bool {
			return ff.Eq == d.GetName()
		})
	}
	if len(ff.In) > 0 {
		predicates = append(predicates, func(d Device) bool {
			for _, name := range ff.In {
				if name == d.GetName() {
					return true
				}
			}
			return false
		})
	}
	if len(ff.Contains) > 0 {
		predicates = append(predicates, func(d Device) bool {
			return strings.Contains(d.GetName(), ff.Contains)
		})
	}
	if len(ff.StartsWith) > 0 {
		predicates = append(predicates, func(d Device) bool {
			return strings.HasPrefix(d.GetName(), strings.TrimSpace(ff.StartsWith))
		})
	}
	if len(ff.EndsWith) > 0 {
		predicates = append(predicates, func(d Device) bool {
			return strings.HasSuffix(d.GetName(), strings.TrimSpace(ff.EndsWith))
		})
	}
	return predicates
}

// Match reports whether d satisfies every predicate.
func Match(d Device, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p(d) {
			return false
		}
	}
	return true
}

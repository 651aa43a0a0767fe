package svg

import "fmt"

// Isolate returns a deep copy of doc in which only the first element
// matching selector, its descendants, and its ancestors remain visible.
//
// Starting at the match and walking up to the root, every sibling at every
// level is marked hidden. Ancestors are left untouched so that sizes,
// transforms and coordinate systems declared on them still apply. The second
// return value is the match inside the copy.
//
// doc is not modified.
func Isolate(doc *Document, selector string) (*Document, *Element, error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return nil, nil, err
	}
	iso := doc.Clone()
	target := sel.First(iso.Root)
	if target == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrSelectorNotFound, selector)
	}
	for e := target; e.parent != nil; e = e.parent {
		for _, sib := range e.parent.Children {
			if sib != e {
				sib.hidden = true
			}
		}
	}
	return iso, target, nil
}

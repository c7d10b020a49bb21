package functions

import "lessc/model"

// predicate builds type test function.
func predicate(name string, test func(n model.Node) bool) *Function {
	return New(name, 1, 1, func(args []model.Node) (model.Node, error) {
		return boolean(test(args[0])), nil
	})
}

func hasUnit(unit string) func(model.Node) bool {
	return func(n model.Node) bool {
		d, ok := n.(*model.Dimension)
		return ok && d.Unit == unit
	}
}

func typeFunctions() []*Function {
	return []*Function{
		predicate("iscolor", func(n model.Node) bool {
			_, err := color(n)
			return err == nil
		}),
		predicate("isnumber", func(n model.Node) bool {
			_, ok := n.(*model.Dimension)
			return ok
		}),
		predicate("isstring", func(n model.Node) bool {
			_, ok := n.(*model.Quoted)
			return ok
		}),
		predicate("iskeyword", func(n model.Node) bool {
			_, ok := n.(*model.Keyword)
			return ok
		}),
		predicate("isurl", func(n model.Node) bool {
			_, ok := n.(*model.URL)
			return ok
		}),
		predicate("ispixel", hasUnit("px")),
		predicate("isem", hasUnit("em")),
		predicate("ispercentage", hasUnit("%")),
		New("isunit", 2, 2, func(args []model.Node) (model.Node, error) {
			unit, err := text(args[1])
			if err != nil {
				return nil, err
			}
			return boolean(hasUnit(unit)(args[0])), nil
		}),
	}
}

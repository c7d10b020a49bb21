package functions

import (
	"fmt"
	"math"

	"lessc/model"
)

// unary builds function applying op to number keeping its unit.
func unary(name string, op func(float64) float64) *Function {
	return New(name, 1, 1, func(args []model.Node) (model.Node, error) {
		d, err := dimension(args[0])
		if err != nil {
			return nil, err
		}
		return &model.Dimension{Value: op(d.Value), Unit: d.Unit}, nil
	})
}

// extreme builds min and max, all units must agree or be absent.
func extreme(name string, better func(a, b float64) bool) *Function {
	return New(name, 1, -1, func(args []model.Node) (model.Node, error) {
		var best *model.Dimension
		for _, a := range args {
			d, err := dimension(a)
			if err != nil {
				return nil, err
			}
			if best != nil && d.Unit != best.Unit && d.Unit != "" && best.Unit != "" {
				return nil, fmt.Errorf("incompatible units %q and %q", best.Unit, d.Unit)
			}
			if best == nil || better(d.Value, best.Value) {
				best = d
			}
		}
		return best, nil
	})
}

func mathFunctions() []*Function {
	return []*Function{
		New("percentage", 1, 1, func(args []model.Node) (model.Node, error) {
			d, err := dimension(args[0])
			if err != nil {
				return nil, err
			}
			return &model.Dimension{Value: d.Value * 100, Unit: "%"}, nil
		}),
		New("round", 1, 2, func(args []model.Node) (model.Node, error) {
			d, err := dimension(args[0])
			if err != nil {
				return nil, err
			}
			places := 0.0
			if len(args) > 1 {
				p, err := dimension(args[1])
				if err != nil {
					return nil, err
				}
				places = math.Max(0, p.Value)
			}
			scale := math.Pow(10, math.Floor(places))
			return &model.Dimension{Value: math.Round(d.Value*scale) / scale, Unit: d.Unit}, nil
		}),
		unary("ceil", math.Ceil),
		unary("floor", math.Floor),
		unary("abs", math.Abs),
		unary("sqrt", math.Sqrt),
		extreme("min", func(a, b float64) bool { return a < b }),
		extreme("max", func(a, b float64) bool { return a > b }),
		New("mod", 2, 2, func(args []model.Node) (model.Node, error) {
			a, err := dimension(args[0])
			if err != nil {
				return nil, err
			}
			b, err := dimension(args[1])
			if err != nil {
				return nil, err
			}
			if b.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return &model.Dimension{Value: math.Mod(a.Value, b.Value), Unit: a.Unit}, nil
		}),
		New("pow", 2, 2, func(args []model.Node) (model.Node, error) {
			a, err := dimension(args[0])
			if err != nil {
				return nil, err
			}
			b, err := dimension(args[1])
			if err != nil {
				return nil, err
			}
			return &model.Dimension{Value: math.Pow(a.Value, b.Value), Unit: a.Unit}, nil
		}),
		New("pi", 0, 0, func([]model.Node) (model.Node, error) {
			return &model.Dimension{Value: math.Pi}, nil
		}),
		New("unit", 1, 2, func(args []model.Node) (model.Node, error) {
			d, err := dimension(args[0])
			if err != nil {
				return nil, err
			}
			unit := ""
			if len(args) > 1 {
				if unit, err = text(args[1]); err != nil {
					return nil, err
				}
			}
			return &model.Dimension{Value: d.Value, Unit: unit}, nil
		}),
	}
}

package functions

import (
	"math"

	"lessc/model"
)

type hsla struct {
	h, s, l, a float64
}

func toHSL(c *model.Color) hsla {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	res := hsla{l: (max + min) / 2, a: c.A}
	if max == min {
		return res
	}
	d := max - min
	if res.l > 0.5 {
		res.s = d / (2 - max - min)
	} else {
		res.s = d / (max + min)
	}
	switch max {
	case r:
		res.h = (g - b) / d
		if g < b {
			res.h += 6
		}
	case g:
		res.h = (b-r)/d + 2
	default:
		res.h = (r-g)/d + 4
	}
	res.h *= 60
	return res
}

func (v hsla) color() *model.Color {
	h := math.Mod(v.h, 360) / 360
	if h < 0 {
		h++
	}
	s, l := clamp01(v.s), clamp01(v.l)
	var m2 float64
	if l <= 0.5 {
		m2 = l * (s + 1)
	} else {
		m2 = l + s - l*s
	}
	m1 := l*2 - m2
	return model.NewColor(hue(m1, m2, h+1.0/3)*255, hue(m1, m2, h)*255, hue(m1, m2, h-1.0/3)*255, v.a)
}

func hue(m1, m2, h float64) float64 {
	if h < 0 {
		h++
	} else if h > 1 {
		h--
	}
	switch {
	case h*6 < 1:
		return m1 + (m2-m1)*h*6
	case h*2 < 1:
		return m2
	case h*3 < 2:
		return m1 + (m2-m1)*(2.0/3-h)*6
	}
	return m1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// channel converts rgb argument, percentages are relative to 255.
func channel(n model.Node) (float64, error) {
	d, err := dimension(n)
	if err != nil {
		return 0, err
	}
	if d.Unit == "%" {
		return d.Value * 255 / 100, nil
	}
	return d.Value, nil
}

// fraction converts alpha, saturation and lightness arguments to [0, 1].
func fraction(n model.Node) (float64, error) {
	d, err := dimension(n)
	if err != nil {
		return 0, err
	}
	if d.Unit == "%" {
		return d.Value / 100, nil
	}
	return d.Value, nil
}

func rgba(args []model.Node) (model.Node, error) {
	var ch [3]float64
	for i := range ch {
		v, err := channel(args[i])
		if err != nil {
			return nil, err
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) > 3 {
		var err error
		if a, err = fraction(args[3]); err != nil {
			return nil, err
		}
	}
	return model.NewColor(ch[0], ch[1], ch[2], a), nil
}

func hslaFunc(args []model.Node) (model.Node, error) {
	h, err := dimension(args[0])
	if err != nil {
		return nil, err
	}
	s, err := fraction(args[1])
	if err != nil {
		return nil, err
	}
	l, err := fraction(args[2])
	if err != nil {
		return nil, err
	}
	a := 1.0
	if len(args) > 3 {
		if a, err = fraction(args[3]); err != nil {
			return nil, err
		}
	}
	return hsla{h: h.Value, s: s, l: l, a: a}.color(), nil
}

// adjust builds function changing color in HSL space by amount in percents.
func adjust(name string, change func(v *hsla, amount float64)) *Function {
	return New(name, 2, 2, func(args []model.Node) (model.Node, error) {
		c, err := color(args[0])
		if err != nil {
			return nil, err
		}
		amount, err := dimension(args[1])
		if err != nil {
			return nil, err
		}
		v := toHSL(c)
		change(&v, amount.Value/100)
		return v.color(), nil
	})
}

// component builds function extracting single color component.
func component(name string, get func(c *model.Color) (float64, string)) *Function {
	return New(name, 1, 1, func(args []model.Node) (model.Node, error) {
		c, err := color(args[0])
		if err != nil {
			return nil, err
		}
		v, unit := get(c)
		return &model.Dimension{Value: v, Unit: unit}, nil
	})
}

func mix(args []model.Node) (model.Node, error) {
	c1, err := color(args[0])
	if err != nil {
		return nil, err
	}
	c2, err := color(args[1])
	if err != nil {
		return nil, err
	}
	p := 0.5
	if len(args) > 2 {
		w, err := dimension(args[2])
		if err != nil {
			return nil, err
		}
		p = w.Value / 100
	}
	w := p*2 - 1
	a := c1.A - c2.A
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1
	return model.NewColor(
		float64(c1.R)*w1+float64(c2.R)*w2,
		float64(c1.G)*w1+float64(c2.G)*w2,
		float64(c1.B)*w1+float64(c2.B)*w2,
		c1.A*p+c2.A*(1-p),
	), nil
}

func colorFunctions() []*Function {
	return []*Function{
		New("rgb", 3, 3, rgba),
		New("rgba", 4, 4, rgba),
		New("hsl", 3, 3, hslaFunc),
		New("hsla", 4, 4, hslaFunc),
		adjust("saturate", func(v *hsla, amount float64) { v.s = clamp01(v.s + amount) }),
		adjust("desaturate", func(v *hsla, amount float64) { v.s = clamp01(v.s - amount) }),
		adjust("lighten", func(v *hsla, amount float64) { v.l = clamp01(v.l + amount) }),
		adjust("darken", func(v *hsla, amount float64) { v.l = clamp01(v.l - amount) }),
		adjust("fadein", func(v *hsla, amount float64) { v.a = clamp01(v.a + amount) }),
		adjust("fadeout", func(v *hsla, amount float64) { v.a = clamp01(v.a - amount) }),
		adjust("fade", func(v *hsla, amount float64) { v.a = clamp01(amount) }),
		New("spin", 2, 2, func(args []model.Node) (model.Node, error) {
			c, err := color(args[0])
			if err != nil {
				return nil, err
			}
			deg, err := dimension(args[1])
			if err != nil {
				return nil, err
			}
			v := toHSL(c)
			v.h = math.Mod(v.h+deg.Value, 360)
			if v.h < 0 {
				v.h += 360
			}
			return v.color(), nil
		}),
		New("greyscale", 1, 1, func(args []model.Node) (model.Node, error) {
			c, err := color(args[0])
			if err != nil {
				return nil, err
			}
			v := toHSL(c)
			v.s = 0
			return v.color(), nil
		}),
		New("mix", 2, 3, mix),
		component("red", func(c *model.Color) (float64, string) { return float64(c.R), "" }),
		component("green", func(c *model.Color) (float64, string) { return float64(c.G), "" }),
		component("blue", func(c *model.Color) (float64, string) { return float64(c.B), "" }),
		component("hue", func(c *model.Color) (float64, string) { return math.Round(toHSL(c).h), "" }),
		component("saturation", func(c *model.Color) (float64, string) { return math.Round(toHSL(c).s * 100), "%" }),
		component("lightness", func(c *model.Color) (float64, string) { return math.Round(toHSL(c).l * 100), "%" }),
		// alpha(opacity=50) is an IE filter and passes through
		New("alpha", 1, 1, func(args []model.Node) (model.Node, error) {
			c, err := color(args[0])
			if err != nil {
				return nil, nil
			}
			return &model.Dimension{Value: c.A}, nil
		}),
	}
}

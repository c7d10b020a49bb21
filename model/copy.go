package model

// CopyBlock returns a copy of block which may be evaluated independently of
// the original. Leaf nodes are shared since evaluation never modifies them.
func CopyBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	rules := make([]Node, len(b.Rules))
	for i, r := range b.Rules {
		rules[i] = copyRule(r)
	}
	return &Block{Base: b.Base, Rules: rules}
}

func copyRule(n Node) Node {
	switch v := n.(type) {
	case *Ruleset:
		c := *v
		c.Block = CopyBlock(v.Block)
		return &c
	case *Mixin:
		return v.Copy()
	case *Media:
		c := *v
		c.Block = CopyBlock(v.Block)
		return &c
	case *Directive:
		c := *v
		c.Block = CopyBlock(v.Block)
		return &c
	}
	return n
}

package main

import "github.com/pulheze/Hafen/internal/cart"

// CartView captures what a cart render wrote into #itens-carrinho,
// #total-carrinho and #cart-count.
type CartView struct {
	Empty bool
	Lines []cart.Line
	Total string
	Count string
}

func (v *CartView) ShowEmpty() {
	v.Empty = true
	v.Lines = nil
}

func (v *CartView) ShowLines(lines []cart.Line) {
	v.Empty = false
	v.Lines = lines
}

// Ports returns the render targets backed by v.
func (v *CartView) Ports() cart.Ports {
	return cart.Ports{Items: v, Total: textSlot{&v.Total}, Count: textSlot{&v.Count}}
}

type textSlot struct{ dst *string }

func (s textSlot) SetText(text string) { *s.dst = text }

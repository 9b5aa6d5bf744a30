package nav

import (
    "testing"

    "github.com/stretchr/testify/require"
)

func newTestNavigator() *Navigator {
    return New(
        []string{"hero", "produtos", "carrinho", "contato"},
        []Item{
            {Target: "hero", LabelKey: "nav.inicio"},
            {Target: "produtos", LabelKey: "nav.produtos"},
            {Target: "carrinho", LabelKey: "nav.carrinho"},
            {Target: "contato"},
        },
    )
}

func activeSections(st State) []string {
    var out []string
    for _, s := range st.Sections {
        if s.Active {
            out = append(out, s.ID)
        }
    }
    return out
}

func activeLinks(st State) []string {
    var out []string
    for _, l := range st.Links {
        if l.Active {
            out = append(out, l.Target)
        }
    }
    return out
}

func TestNewStartsAtDefaultSection(t *testing.T) {
    st := newTestNavigator().State()
    require.Equal(t, DefaultSection, st.Active)
    require.Equal(t, []string{"hero"}, activeSections(st))
    require.Equal(t, []string{"hero"}, activeLinks(st))
    require.False(t, st.ScrollTop)
}

func TestNavigateToActivatesExactlyOne(t *testing.T) {
    n := newTestNavigator()
    st := n.NavigateTo("carrinho")

    require.Equal(t, "carrinho", st.Active)
    require.Equal(t, []string{"carrinho"}, activeSections(st))
    require.Equal(t, []string{"carrinho"}, activeLinks(st))
    require.True(t, st.ScrollTop)
    require.True(t, st.IsActive("carrinho"))
    require.False(t, st.IsActive("hero"))
}

func TestNavigateToUnknownLeavesNothingActive(t *testing.T) {
    n := newTestNavigator()
    st := n.NavigateTo("blog")

    require.Empty(t, st.Active)
    require.Empty(t, activeSections(st))
    require.Empty(t, activeLinks(st))
    require.True(t, st.ScrollTop)

    st = n.Default()
    require.Equal(t, []string{"hero"}, activeSections(st))
}

func TestLinkWithoutLabelKeyGetsTitle(t *testing.T) {
    st := newTestNavigator().State()
    require.Equal(t, "Contato", st.Links[3].Label)
    require.Empty(t, st.Links[0].Label)
}

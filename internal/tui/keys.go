package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Exit    key.Binding
	Hold    key.Binding
	Reply   key.Binding
	Like    key.Binding
	Viewers key.Binding
	Delete  key.Binding
	Create  key.Binding
	Copy    key.Binding
	Retry   key.Binding
	Help    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Exit:    key.NewBinding(key.WithKeys("down", "j", "esc", "q", "ctrl+c"), key.WithHelp("↓/q", "close")),
		Hold:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hold")),
		Reply:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),
		Like:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "like")),
		Viewers: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "viewers")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Create:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new story")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// forStory enables the bindings that apply to the story on screen.
func (k keyMap) forStory(own bool) keyMap {
	k.Reply.SetEnabled(!own)
	k.Like.SetEnabled(!own)
	k.Viewers.SetEnabled(own)
	k.Delete.SetEnabled(own)
	k.Create.SetEnabled(own)
	k.Retry.SetEnabled(false)
	return k
}

// forTerminal is the key set for screens without a story.
func (k keyMap) forTerminal(canRetry bool) keyMap {
	for _, b := range []*key.Binding{&k.Prev, &k.Next, &k.Hold, &k.Reply, &k.Like, &k.Viewers, &k.Delete, &k.Create, &k.Copy} {
		b.SetEnabled(false)
	}
	k.Retry.SetEnabled(canRetry)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Exit, k.Retry, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Exit, k.Hold},
		{k.Reply, k.Like, k.Copy},
		{k.Viewers, k.Delete, k.Create},
		{k.Retry, k.Help},
	}
}

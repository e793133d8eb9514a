package nav

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func testMenu(opts ...Option) *Menu {
	return New([]Section{
		{Items: []Item{
			{Title: "Dashboard", Icon: "#", Link: "/"},
			{Title: "Orders", Icon: "=", Children: []Item{
				{Title: "All", Link: "/orders"},
				{Title: "Refunds", Children: []Item{
					{Title: "Pending", Link: "/orders/refunds/pending"},
				}},
			}},
			{Title: "Customers", Icon: "@", Children: []Item{
				{Title: "List", Link: "/customers"},
			}},
		}},
		{Label: "Account", Items: []Item{
			{Title: "Settings", Icon: "*", Link: "/settings"},
		}},
	}, opts...)
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestToggleSingleOpen(t *testing.T) {
	m := testMenu()

	if !m.Toggle("Orders") || !m.IsOpen("Orders") {
		t.Fatal("Orders should open")
	}
	m.Toggle("Orders/Refunds")
	m.Toggle("Customers")

	if m.IsOpen("Orders") || m.IsOpen("Orders/Refunds") {
		t.Error("opening Customers should close Orders and its subtree")
	}
	if !m.IsOpen("Customers") {
		t.Error("Customers should be open")
	}

	m.Toggle("Customers")
	if m.IsOpen("Customers") {
		t.Error("second toggle should close")
	}
}

func TestToggleMultiOpen(t *testing.T) {
	m := testMenu(WithPolicy(MultiOpen))
	m.Toggle("Orders")
	m.Toggle("Customers")
	if !m.IsOpen("Orders") || !m.IsOpen("Customers") {
		t.Error("MultiOpen should keep both open")
	}
}

func TestToggleLeafOrUnknown(t *testing.T) {
	m := testMenu()
	if m.Toggle("Dashboard") {
		t.Error("leaf should not toggle")
	}
	if m.Toggle("Nope") || m.Toggle("Orders/Nope") {
		t.Error("unknown id should not toggle")
	}
}

func TestVisible(t *testing.T) {
	m := testMenu()
	m.Toggle("Orders")
	m.Toggle("Orders/Refunds")

	got := strings.Join(ids(m.Visible(false)), ",")
	want := "Dashboard,Orders,Orders/All,Orders/Refunds,Orders/Refunds/Pending,Customers,Settings"
	if got != want {
		t.Errorf("Visible = %s\nwant %s", got, want)
	}

	got = strings.Join(ids(m.Visible(true)), ",")
	if got != "Dashboard,Orders,Customers,Settings" {
		t.Errorf("collapsed Visible = %s", got)
	}
}

func TestActivate(t *testing.T) {
	ran := false
	m := New([]Section{{Items: []Item{
		{Title: "Reports", Action: func() tea.Cmd { ran = true; return nil }, Children: []Item{
			{Title: "Daily", Link: "/reports/daily"},
		}},
	}}})

	link, _ := m.Activate(false)
	if !ran || link != "" || !m.IsOpen("Reports") {
		t.Fatalf("branch activate: ran=%v link=%q open=%v", ran, link, m.IsOpen("Reports"))
	}

	m.Move(1, false)
	link, _ = m.Activate(false)
	if link != "/reports/daily" {
		t.Errorf("leaf link = %q", link)
	}
}

func TestActivateCollapsedDoesNotOpen(t *testing.T) {
	m := testMenu()
	m.Move(1, true)
	m.Activate(true)
	if m.IsOpen("Orders") {
		t.Error("collapsed sidebar should not open submenus")
	}
}

func TestMoveClamps(t *testing.T) {
	m := testMenu()
	m.Move(-3, false)
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d", m.Cursor())
	}
	m.Move(100, false)
	if m.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", m.Cursor())
	}
	if e, ok := m.Selected(false); !ok || e.ID != "Settings" {
		t.Errorf("selected = %+v", e)
	}
}

func TestRender(t *testing.T) {
	m := testMenu()
	m.Toggle("Orders")

	out := m.Render(24, false, "/orders")
	for _, want := range []string{"Dashboard", "▾", "All", "ACCOUNT", "Settings", "╌"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w != 24 {
			t.Errorf("line %q width = %d, want 24", line, w)
		}
	}

	collapsed := m.Render(3, true, "/orders")
	if strings.Contains(collapsed, "Dashboard") || strings.Contains(collapsed, "All") || strings.Contains(collapsed, "ACCOUNT") {
		t.Errorf("collapsed render shows text:\n%s", collapsed)
	}
}

// handleAdminConn implements the administrative control-socket command
// set spec.md §1 calls out as a peripheral surface: a short-lived,
// one-command-per-connection text protocol for operators and the
// muxd CLI, grounded on the teacher's manager.go status/dump verbs but
// rebuilt fresh since the teacher exposes them over its own
// runtime/server RPCs rather than a line protocol. Per DESIGN.md's
// Open Question decision, pty-log/debug-capture are not implemented.
package reactor

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const adminHelp = `commands: ping, status, panes, windows, layouts, send <paneId> <text>, dump, quit, help`

func (r *Reactor) handleAdminConn(conn net.Conn) {
	defer conn.Close()
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "ping":
		fmt.Fprintln(conn, "pong")
	case "help":
		fmt.Fprintln(conn, adminHelp)
	case "status":
		r.writeStatus(conn)
	case "panes":
		r.writePanes(conn)
	case "windows":
		r.writeWindows(conn)
	case "layouts":
		r.writeLayouts(conn)
	case "send":
		r.adminSend(conn, args)
	case "dump":
		r.writeDump(conn)
	case "quit":
		fmt.Fprintln(conn, "stopping")
		r.Stop()
	default:
		fmt.Fprintf(conn, "unknown command %q; %s\n", verb, adminHelp)
	}
}

func (r *Reactor) writeStatus(conn net.Conn) {
	s := r.Stats()
	fmt.Fprintf(conn, "clients=%d master=%s windows=%d panes=%d active-window=%d active-pane=%d\n",
		s.Clients, s.MasterID, s.Windows, s.Panes, s.ActiveWindow, s.ActivePane)
	for _, id := range r.sortedClientIDs() {
		fmt.Fprintf(conn, "  client %s\n", id)
	}
}

func (r *Reactor) writePanes(conn net.Conn) {
	for _, id := range r.Session.Panes.Iter() {
		pn, err := r.Session.Panes.Get(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(conn, "pane %d %dx%d gen=%d alive=%t\n", id, pn.Cols, pn.Rows, pn.Generation(), pn.Alive())
	}
}

func (r *Reactor) writeWindows(conn net.Conn) {
	for _, id := range r.Session.WindowIDs() {
		w, err := r.Session.Window(id)
		if err != nil {
			continue
		}
		active := ""
		if id == r.Session.ActiveWindowID() {
			active = " (active)"
		}
		fmt.Fprintf(conn, "window %d template=%s panes=%v active-pane=%d%s\n",
			id, w.TemplateID(), w.PaneIDs(), w.ActivePaneID(), active)
	}
}

func (r *Reactor) writeLayouts(conn net.Conn) {
	if r.Layouts == nil {
		return
	}
	for _, id := range r.Layouts.IDs() {
		fmt.Fprintln(conn, id)
	}
}

func (r *Reactor) adminSend(conn net.Conn, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(conn, "usage: send <paneId> <text>")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		fmt.Fprintf(conn, "bad pane id: %v\n", err)
		return
	}
	pn, err := r.Session.Panes.Get(uint16(id))
	if err != nil {
		fmt.Fprintf(conn, "pane %d: %v\n", id, err)
		return
	}
	text := strings.Join(args[1:], " ")
	if err := pn.WriteInput([]byte(text)); err != nil {
		fmt.Fprintf(conn, "write failed: %v\n", err)
		return
	}
	fmt.Fprintln(conn, "ok")
}

func (r *Reactor) writeDump(conn net.Conn) {
	r.writeStatus(conn)
	r.writeWindows(conn)
	r.writePanes(conn)
}

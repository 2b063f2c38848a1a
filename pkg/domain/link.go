package domain

import "fmt"

// Link connects an output port to an input port.
type Link struct {
	FromNode string `json:"from_node" yaml:"from_node"`
	FromPort string `json:"from_port" yaml:"from_port"`
	ToNode   string `json:"to_node" yaml:"to_node"`
	ToPort   string `json:"to_port" yaml:"to_port"`
}

// Source is the output end of the link.
func (l Link) Source() PortRef {
	return PortRef{Node: l.FromNode, Port: l.FromPort, Direction: PortOutput}
}

// Target is the input end of the link. An input port holds at most one link,
// so the target identifies the link within a graph.
func (l Link) Target() PortRef {
	return PortRef{Node: l.ToNode, Port: l.ToPort, Direction: PortInput}
}

func (l Link) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", l.FromNode, l.FromPort, l.ToNode, l.ToPort)
}

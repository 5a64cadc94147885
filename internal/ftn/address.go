package ftn

import "fmt"

// Address is a FidoNet 4D address (Zone:Net/Node.Point) as carried in the
// stored message header.
type Address struct {
	Zone  int
	Net   int
	Node  int
	Point int
}

// String returns the 4D address. Point is omitted if zero.
func (a Address) String() string {
	if a.Point == 0 {
		return fmt.Sprintf("%d:%d/%d", a.Zone, a.Net, a.Node)
	}
	return fmt.Sprintf("%d:%d/%d.%d", a.Zone, a.Net, a.Node, a.Point)
}

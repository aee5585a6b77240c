package engine

import (
	"encoding/xml"
	"fmt"
)

// SolutionDocument is the XML form of a fleet served by the legacy solution
// route and read back by clients:
//
//	<solucion tam="2"><barco>0#0#H#3</barco><barco>2#4#V#2</barco></solucion>
type SolutionDocument struct {
	XMLName xml.Name `xml:"solucion"`
	Size    int      `xml:"tam,attr"`
	Ships   []string `xml:"barco"`
}

// NewSolutionDocument renders a fleet in ship id order
func NewSolutionDocument(fleet []ShipDescriptor) SolutionDocument {
	doc := SolutionDocument{Size: len(fleet), Ships: make([]string, len(fleet))}
	for i, ship := range fleet {
		doc.Ships[i] = ship.String()
	}
	return doc
}

// Fleet parses the ship records back into descriptors
func (d SolutionDocument) Fleet() ([]ShipDescriptor, error) {
	if d.Size != len(d.Ships) {
		return nil, fmt.Errorf("tam=%d but %d ships listed", d.Size, len(d.Ships))
	}

	fleet := make([]ShipDescriptor, len(d.Ships))
	for i, record := range d.Ships {
		ship, err := ParseShipDescriptor(record)
		if err != nil {
			return nil, fmt.Errorf("ship %d: %w", i, err)
		}
		fleet[i] = ship
	}
	return fleet, nil
}

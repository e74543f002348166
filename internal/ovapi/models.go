package ovapi

// TransportTypeMetro is the only transport mode the board keeps.
const TransportTypeMetro = "METRO"

// tpcResponse is the body of GET /tpc/{code}: one entry per requested stop code.
// An entry may be null.
type tpcResponse map[string]*StopNode

// StopNode holds the passes of one timing point.
type StopNode struct {
	Passes map[string]Pass `json:"Passes"`
}

// Pass is one scheduled vehicle departure at a timing point.
// Only the fields the board uses are decoded.
type Pass struct {
	TransportType         string `json:"TransportType"`
	LinePublicNumber      string `json:"LinePublicNumber"`
	DestinationName50     string `json:"DestinationName50"`
	ExpectedDepartureTime string `json:"ExpectedDepartureTime"`
}

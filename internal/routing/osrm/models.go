package osrm

// osrmResponse is the OSRM route service response.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

// osrmRoute is a single route in the response.
type osrmRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// OSRM response codes.
const (
	codeOk      = "Ok"
	codeNoRoute = "NoRoute"
)

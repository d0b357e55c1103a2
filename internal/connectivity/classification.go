package connectivity

import "fmt"

// Classification is the tracker's view of the active network.
type Classification int

const (
	Uninitialized Classification = iota
	Disconnected
	Wifi
	Cellular
	Ethernet
	Bluetooth
	Other
)

var classificationNames = map[Classification]string{
	Uninitialized: "uninitialized",
	Disconnected:  "disconnected",
	Wifi:          "wifi",
	Cellular:      "cellular",
	Ethernet:      "ethernet",
	Bluetooth:     "bluetooth",
	Other:         "other",
}

// Classifications lists every value, in declaration order.
func Classifications() []Classification {
	return []Classification{Uninitialized, Disconnected, Wifi, Cellular, Ethernet, Bluetooth, Other}
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("classification(%d)", int(c))
}

// Connected is false only for Disconnected and Uninitialized.
func (c Classification) Connected() bool {
	return c != Disconnected && c != Uninitialized
}

func (c Classification) MarshalText() ([]byte, error) {
	if _, ok := classificationNames[c]; !ok {
		return nil, fmt.Errorf("invalid classification %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(text []byte) error {
	for value, name := range classificationNames {
		if name == string(text) {
			*c = value
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", string(text))
}

// Direction is which set of listener callbacks a classification selects.
type Direction int

const (
	DirectionDisconnected Direction = iota
	DirectionConnected
)

func (c Classification) Direction() Direction {
	if c.Connected() {
		return DirectionConnected
	}
	return DirectionDisconnected
}

func (d Direction) String() string {
	if d == DirectionConnected {
		return "connected"
	}
	return "disconnected"
}

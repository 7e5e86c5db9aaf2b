package source

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ldEvent is one harvested JSON-LD event node. The marketplace embeds
// these in several shapes: a bare Event, an ItemList of ListItem
// wrappers, an @graph, or plain arrays. Field types tolerate the
// string-or-object variants seen in the wild.
type ldEvent struct {
	Name        string   `json:"name"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Image       ldImage  `json:"image"`
	Location    ldPlace  `json:"location"`
	Offers      ldOffers `json:"offers"`
}

// harvestEvents walks one decoded JSON-LD document and collects every
// node whose @type is "Event", descending through ItemList wrappers,
// @graph containers, and arrays.
func harvestEvents(raw json.RawMessage) []ldEvent {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		var out []ldEvent
		for _, el := range arr {
			out = append(out, harvestEvents(el)...)
		}
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}

	if ldType(obj) == "Event" {
		var ev ldEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil
		}
		return []ldEvent{ev}
	}

	var out []ldEvent
	for _, key := range []string{"itemListElement", "item", "@graph"} {
		if sub, ok := obj[key]; ok {
			out = append(out, harvestEvents(sub)...)
		}
	}
	return out
}

// ldType reads a node's @type, tolerating the array form.
func ldType(obj map[string]json.RawMessage) string {
	raw, ok := obj["@type"]
	if !ok {
		return ""
	}
	var typ string
	if err := json.Unmarshal(raw, &typ); err == nil {
		return typ
	}
	var types []string
	if err := json.Unmarshal(raw, &types); err == nil && len(types) > 0 {
		return types[0]
	}
	return ""
}

// ldPlace tolerates both a bare venue string and a Place object.
type ldPlace struct {
	Name    string
	Address ldAddress
}

func (p *ldPlace) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		return nil
	}
	var obj struct {
		Name    string    `json:"name"`
		Address ldAddress `json:"address"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unexpected shape; keep the record with an empty venue.
		return nil
	}
	p.Name = obj.Name
	p.Address = obj.Address
	return nil
}

// ldAddress tolerates both a bare string and a PostalAddress object.
type ldAddress struct {
	Street   string
	Locality string
	Region   string
	Postal   string
	Raw      string
}

func (a *ldAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Raw = s
		return nil
	}
	var obj struct {
		Street   string `json:"streetAddress"`
		Locality string `json:"addressLocality"`
		Region   string `json:"addressRegion"`
		Postal   string `json:"postalCode"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	a.Street = obj.Street
	a.Locality = obj.Locality
	a.Region = obj.Region
	a.Postal = obj.Postal
	return nil
}

// Full returns the printable one-line address.
func (a ldAddress) Full() string {
	if a.Raw != "" {
		return a.Raw
	}
	parts := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.Locality, a.Region, a.Postal} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// ldOffers tolerates a single Offer object or an array of them; only
// the first offer counts.
type ldOffers struct {
	Price    string
	LowPrice string
}

func (o *ldOffers) UnmarshalJSON(data []byte) error {
	type offer struct {
		Price    ldNumber `json:"price"`
		LowPrice ldNumber `json:"lowPrice"`
	}
	var list []offer
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			o.Price = list[0].Price.value
			o.LowPrice = list[0].LowPrice.value
		}
		return nil
	}
	var one offer
	if err := json.Unmarshal(data, &one); err != nil {
		return nil
	}
	o.Price = one.Price.value
	o.LowPrice = one.LowPrice.value
	return nil
}

// Amount returns the offer's price, falling back to lowPrice.
func (o ldOffers) Amount() string {
	if o.Price != "" {
		return o.Price
	}
	return o.LowPrice
}

// ldImage tolerates a bare URL string, an array of URLs, or an
// ImageObject; it keeps the first URL found.
type ldImage struct {
	URL string
}

func (i *ldImage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		i.URL = s
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			return i.UnmarshalJSON(list[0])
		}
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	i.URL = obj.URL
	return nil
}

// ldNumber accepts both string and numeric JSON values, keeping the
// printable form.
type ldNumber struct {
	value string
}

func (n *ldNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.value = s
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.value = strconv.FormatFloat(f, 'f', -1, 64)
		return nil
	}
	return nil
}

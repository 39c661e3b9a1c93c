package record

import (
	"encoding/xml"
	"strconv"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/pool"
)

// Wire format, three ordered fields under a root element:
//
//	<root>
//	  <var name="id" value="{id}"/>
//	  <var name="level" value="{level}"/>
//	  <objects>
//	    <object name="{name}"/>
//	  </objects>
//	</root>

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlNameEntry struct {
	Name string `xml:"name,attr"`
}

type xmlObjects struct {
	Entries []xmlNameEntry `xml:"object"`
}

type xmlDocument struct {
	XMLName xml.Name   `xml:"root"`
	Fields  []xmlField `xml:"var"`
	Objects xmlObjects `xml:"objects"`
}

// Marshal encodes a record into its XML wire form.
func Marshal(o *TestObject) ([]byte, error) {
	if o == nil {
		return nil, errors.New(errors.ErrorTypeSerialization, "cannot marshal nil record")
	}
	if len(o.Names) < MinNames {
		return nil, errors.New(errors.ErrorTypeSerialization, "cannot marshal record without names").
			WithDetail("id", o.ID)
	}

	doc := xmlDocument{
		Fields: []xmlField{
			{Name: "id", Value: o.ID},
			{Name: "level", Value: strconv.Itoa(o.Level)},
		},
	}
	doc.Objects.Entries = make([]xmlNameEntry, len(o.Names))
	for i, name := range o.Names {
		doc.Objects.Entries[i] = xmlNameEntry{Name: name}
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSerialization, "xml encode failed").
			WithDetail("id", o.ID)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Unmarshal decodes a record from its XML wire form. Decoding is strictly
// positional: the first var is the id, the second is the level, and the
// objects children rebuild the names in document order. Any missing or
// unparsable piece fails with a malformed_record error; there is no
// partial recovery.
func Unmarshal(data []byte) (*TestObject, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedRecord, "xml parse failed")
	}

	if len(doc.Fields) < 2 {
		return nil, errors.New(errors.ErrorTypeMalformedRecord, "expected two scalar fields").
			WithDetail("fields", len(doc.Fields))
	}

	id := doc.Fields[0].Value
	if id == "" {
		return nil, errors.New(errors.ErrorTypeMalformedRecord, "empty id field")
	}

	level, err := strconv.Atoi(doc.Fields[1].Value)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedRecord, "unparsable level field").
			WithDetail("id", id)
	}

	if len(doc.Objects.Entries) < MinNames {
		return nil, errors.New(errors.ErrorTypeMalformedRecord, "record carries no names").
			WithDetail("id", id)
	}

	names := make([]string, len(doc.Objects.Entries))
	for i, entry := range doc.Objects.Entries {
		names[i] = entry.Name
	}

	rec, err := Reconstruct(id, level, names)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedRecord, "decoded record rejected")
	}
	return rec, nil
}

package oui

import (
	"oui/jsonv"
	"oui/manuf"
)

// ResultValue renders a lookup result as
//
//	{"found":bool,"vendor":string,"prefix":string,"mask_bits":int,"comment":string}
//
// Only "found" is present when nothing matched.
func ResultValue(r manuf.Result) jsonv.Value {
	if !r.Found {
		return jsonv.Object(jsonv.F("found", jsonv.Bool(false)))
	}
	return jsonv.Object(
		jsonv.F("found", jsonv.Bool(true)),
		jsonv.F("vendor", jsonv.String(r.Entry.Vendor)),
		jsonv.F("prefix", jsonv.String(r.Prefix)),
		jsonv.F("mask_bits", jsonv.Int(r.Entry.Bits)),
		jsonv.F("comment", jsonv.String(r.Entry.Comment)),
	)
}

package model

import "encoding/json"

// The store hands back opaque JSON bodies. Decoding is best-effort per
// document: a body that no longer matches the schema is skipped, not fatal,
// so one corrupt historical document cannot blank out a whole page.

func DecodeOrders(raws [][]byte) []Order {
	out := make([]Order, 0, len(raws))
	for _, raw := range raws {
		var o Order
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		out = append(out, o)
	}
	return out
}

func DecodeMasterItems(raws [][]byte) []MasterItem {
	out := make([]MasterItem, 0, len(raws))
	for _, raw := range raws {
		var m MasterItem
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func DecodeWorkers(raws [][]byte) []Worker {
	out := make([]Worker, 0, len(raws))
	for _, raw := range raws {
		var w Worker
		if err := json.Unmarshal(raw, &w); err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

func DecodeTransactions(raws [][]byte) []Transaction {
	out := make([]Transaction, 0, len(raws))
	for _, raw := range raws {
		var t Transaction
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

func DecodeUsers(raws [][]byte) []User {
	out := make([]User, 0, len(raws))
	for _, raw := range raws {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}

func DecodeFees(raws [][]byte) []Fee {
	out := make([]Fee, 0, len(raws))
	for _, raw := range raws {
		var f Fee
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const tableSeparator = "+--------------------------------------------------------------------" +
	"+--------------------+------------------+--------------------+------------------+------------+"

func printOrderTable(orders []domain.ClientOrder) {
	writeOrderTable(os.Stdout, orders)
}

// writeOrderTable writes orders as a table: what each order requests, what
// it offers and its price in requested units per offered unit.
func writeOrderTable(w io.Writer, orders []domain.ClientOrder) {
	fmt.Fprintln(w, tableSeparator)
	fmt.Fprintf(
		w, "| %-66s | %-18s | %-16s | %-18s | %-16s | %-10s |\n",
		"Note ID", "Requested Asset", "Amount Requested", "Offered Asset",
		"Offered Amount", "Price",
	)
	fmt.Fprintln(w, tableSeparator)
	for _, o := range orders {
		fmt.Fprintf(
			w, "| %-66s | %-18s | %-16d | %-18s | %-16d | %-10s |\n",
			o.Id, o.Target.AssetID, o.Target.Amount,
			o.Source.AssetID, o.Source.Amount, o.Price().StringFixed(2),
		)
	}
	fmt.Fprintln(w, tableSeparator)
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}
	fmt.Println(string(buf))
	return nil
}

// parseTags parses tags given in decimal or 0x-prefixed hex form.
func parseTags(args []string) ([]notes.NoteTag, error) {
	tags := make([]notes.NoteTag, 0, len(args))
	for _, arg := range args {
		tag, err := strconv.ParseUint(strings.TrimSpace(arg), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid tag %q: %w", arg, err)
		}
		tags = append(tags, notes.NoteTag(tag))
	}
	return tags, nil
}

type noteInfo struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	Sender  string `json:"sender"`
	Tag     uint32 `json:"tag"`
	Asset   string `json:"asset"`
	Amount  uint64 `json:"amount"`
	Details string `json:"details,omitempty"`
}

func toNoteInfo(n domain.Note) noteInfo {
	info := noteInfo{
		Id:     n.Id.String(),
		Kind:   "unknown",
		Sender: n.Sender.String(),
		Tag:    uint32(n.Tag),
		Asset:  n.Asset.AssetID.String(),
		Amount: n.Asset.Amount,
	}
	switch {
	case n.IsSwap():
		info.Kind = "swap"
		if o, err := domain.SwapOrderFromNote(n); err == nil {
			info.Details = fmt.Sprintf(
				"order %s fill #%d by %s requesting %s",
				o.BaseSerial, o.FillNumber, o.Creator, o.Requested,
			)
		}
	case n.IsPayment():
		info.Kind = "payment"
		if p, err := domain.PaymentNoteFromNote(n); err == nil {
			info.Details = fmt.Sprintf("payment to %s", p.Target)
		}
	}
	return info
}

type orderInfo struct {
	Id               string     `json:"id"`
	Status           string     `json:"status"`
	Creator          string     `json:"creator"`
	OfferedAsset     string     `json:"offered_asset"`
	RequestedAsset   string     `json:"requested_asset"`
	InitialOffered   uint64     `json:"initial_offered"`
	InitialRequested uint64     `json:"initial_requested"`
	OfferedLeft      uint64     `json:"offered_left"`
	RequestedLeft    uint64     `json:"requested_left"`
	FillCount        uint64     `json:"fill_count"`
	NoteId           string     `json:"note_id,omitempty"`
	Fills            []fillInfo `json:"fills,omitempty"`
}

func toOrderInfo(o *domain.Order, fills []*domain.Fill) orderInfo {
	info := orderInfo{
		Id:               o.Id,
		Status:           o.Status.String(),
		Creator:          o.Creator.String(),
		OfferedAsset:     o.OfferedAsset.String(),
		RequestedAsset:   o.RequestedAsset.String(),
		InitialOffered:   o.InitialOffered,
		InitialRequested: o.InitialRequested,
		FillCount:        o.FillCount,
		NoteId:           o.CurrentNoteId,
	}
	if o.IsOpen() {
		info.OfferedLeft = o.Current.Offered.Amount
		info.RequestedLeft = o.Current.Requested.Amount
	}
	for _, f := range fills {
		info.Fills = append(info.Fills, toFillInfo(f))
	}
	return info
}

type fillInfo struct {
	Id              string `json:"id"`
	OrderId         string `json:"order_id"`
	FillNumber      uint64 `json:"fill_number"`
	Filler          string `json:"filler"`
	Paid            string `json:"paid"`
	Received        string `json:"received"`
	PaymentNoteId   string `json:"payment_note_id"`
	SuccessorNoteId string `json:"successor_note_id,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

func toFillInfo(f *domain.Fill) fillInfo {
	return fillInfo{
		Id:              f.Id,
		OrderId:         f.OrderId,
		FillNumber:      f.FillNumber,
		Filler:          f.Filler.String(),
		Paid:            f.Paid.String(),
		Received:        f.Received.String(),
		PaymentNoteId:   f.PaymentNoteId,
		SuccessorNoteId: f.SuccessorNoteId,
		Timestamp:       f.Timestamp,
	}
}

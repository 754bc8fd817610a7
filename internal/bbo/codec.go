package bbo

import (
	"encoding/binary"
)

// Field offsets within the 48-byte record. Offsets are explicit rather than
// derived from struct layout so wire compatibility holds on any platform.
const (
	offSymbol    = 0
	offBidPrice  = 8
	offBidSize   = 12
	offAskPrice  = 16
	offAskSize   = 20
	offSpread    = 24
	offTsParse   = 28
	offTsFifoWr  = 32
	offTsFifoRd  = 36
	offTsTxStart = 40
	offPadding   = 44
)

// decodeFields maps a 48-byte buffer onto a Packet. Pure byte-to-field
// extraction; no validation. The caller guarantees len(data) == PacketSize.
func decodeFields(data []byte) Packet {
	var p Packet
	copy(p.Symbol[:], data[offSymbol:offSymbol+SymbolSize])
	p.BidPrice = binary.LittleEndian.Uint32(data[offBidPrice : offBidPrice+4])
	p.BidSize = binary.LittleEndian.Uint32(data[offBidSize : offBidSize+4])
	p.AskPrice = binary.LittleEndian.Uint32(data[offAskPrice : offAskPrice+4])
	p.AskSize = binary.LittleEndian.Uint32(data[offAskSize : offAskSize+4])
	p.Spread = binary.LittleEndian.Uint32(data[offSpread : offSpread+4])
	p.TsParse = binary.LittleEndian.Uint32(data[offTsParse : offTsParse+4])
	p.TsFifoWrite = binary.LittleEndian.Uint32(data[offTsFifoWr : offTsFifoWr+4])
	p.TsFifoRead = binary.LittleEndian.Uint32(data[offTsFifoRd : offTsFifoRd+4])
	p.TsTxStart = binary.LittleEndian.Uint32(data[offTsTxStart : offTsTxStart+4])
	p.Padding = binary.LittleEndian.Uint32(data[offPadding : offPadding+4])
	return p
}

// Encode serializes a Packet back into its 48-byte wire form. Encode and
// decodeFields are exact inverses over the wire fields; ReceivedAt is not
// part of the wire format.
func Encode(p *Packet) []byte {
	buf := make([]byte, PacketSize)
	copy(buf[offSymbol:offSymbol+SymbolSize], p.Symbol[:])
	binary.LittleEndian.PutUint32(buf[offBidPrice:offBidPrice+4], p.BidPrice)
	binary.LittleEndian.PutUint32(buf[offBidSize:offBidSize+4], p.BidSize)
	binary.LittleEndian.PutUint32(buf[offAskPrice:offAskPrice+4], p.AskPrice)
	binary.LittleEndian.PutUint32(buf[offAskSize:offAskSize+4], p.AskSize)
	binary.LittleEndian.PutUint32(buf[offSpread:offSpread+4], p.Spread)
	binary.LittleEndian.PutUint32(buf[offTsParse:offTsParse+4], p.TsParse)
	binary.LittleEndian.PutUint32(buf[offTsFifoWr:offTsFifoWr+4], p.TsFifoWrite)
	binary.LittleEndian.PutUint32(buf[offTsFifoRd:offTsFifoRd+4], p.TsFifoRead)
	binary.LittleEndian.PutUint32(buf[offTsTxStart:offTsTxStart+4], p.TsTxStart)
	binary.LittleEndian.PutUint32(buf[offPadding:offPadding+4], p.Padding)
	return buf
}

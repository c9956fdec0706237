package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/types"
)

type bucketKey struct {
	color string
	size  string
}

// ReallocatePackets estimates the color/size breakdown left after returns by
// scaling the aggregated packet buckets by remaining/packet total, in either
// direction. Buckets that round to zero are dropped. The result is a display
// estimate and never feeds financial totals.
func ReallocatePackets(packets types.Packets, remaining int) []types.PacketBucket {
	original := packets.Total()
	if original <= 0 {
		return nil
	}

	order := []bucketKey{}
	sums := map[bucketKey]int{}
	for _, packet := range packets {
		for _, bucket := range packet.Composition {
			key := bucketKey{color: bucket.Color, size: bucket.Size}
			if _, seen := sums[key]; !seen {
				order = append(order, key)
			}
			sums[key] += bucket.Quantity
		}
	}

	remaining = max(0, remaining)
	scaled := make([]types.PacketBucket, 0, len(order))
	for _, key := range order {
		qty := int(decimal.NewFromInt(int64(sums[key])).
			Mul(decimal.NewFromInt(int64(remaining))).
			Div(decimal.NewFromInt(int64(original))).
			Round(0).
			IntPart())
		if qty <= 0 {
			continue
		}
		scaled = append(scaled, types.PacketBucket{Color: key.color, Size: key.size, Quantity: qty})
	}
	return scaled
}

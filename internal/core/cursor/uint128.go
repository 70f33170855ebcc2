package cursor

import "fmt"

// Uint128 holds fields wider than 64 bits.
type Uint128 struct {
	Hi, Lo uint64
}

func (u Uint128) String() string {
	if u.Hi == 0 {
		return fmt.Sprintf("%#x", u.Lo)
	}
	return fmt.Sprintf("%#x%016x", u.Hi, u.Lo)
}

func (u Uint128) setBit(i uint) Uint128 {
	if i < 64 {
		u.Lo |= 1 << i
	} else {
		u.Hi |= 1 << (i - 64)
	}
	return u
}

// shiftIn shifts u left by one and places bit at position 0.
func (u Uint128) shiftIn(bit uint64) Uint128 {
	return Uint128{Hi: u.Hi<<1 | u.Lo>>63, Lo: u.Lo<<1 | bit}
}

package bookings

// Channel identifies how a ticket was sold. The channel decides the ticket
// code prefix, who may book (COUNTER is staff only) and how the fare is
// computed (FLASH_SALE is quota-gated and discounted).
type Channel string

const (
	ChannelOnline    Channel = "ONLINE"
	ChannelCounter   Channel = "COUNTER"
	ChannelFlashSale Channel = "FLASH_SALE"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelOnline, ChannelCounter, ChannelFlashSale:
		return true
	}
	return false
}

func (c Channel) String() string {
	return string(c)
}

// PaymentMethod records how the fare was settled. Settlement itself
// happens outside this system; the method is stored on the ticket for
// reporting and reconciliation.
type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "CARD"
	PaymentCash    PaymentMethod = "CASH"
	PaymentVoucher PaymentMethod = "VOUCHER"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentCash, PaymentVoucher:
		return true
	}
	return false
}

func (p PaymentMethod) String() string {
	return string(p)
}

// CodePrefix returns the ticket code prefix for the channel
func (c Channel) CodePrefix() string {
	switch c {
	case ChannelCounter:
		return "CNT"
	case ChannelFlashSale:
		return "FSL"
	default:
		return "ONL"
	}
}

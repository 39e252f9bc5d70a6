// Package billing derives the money figures shown for an order: the
// pre-tax subtotal backed out of a tax-inclusive total, the discount,
// the re-taxed final total and the payment processor commissions.
//
// All arithmetic is done on integer cents and every step rounds half up,
// so Final.Subtotal + Final.Taxes always equals Final.Total exactly.
// The discount reduces the taxable base; tax is re-derived afterwards.
package billing

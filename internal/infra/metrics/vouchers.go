package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		vouchersIssuedTotal,
		vouchersRedeemedTotal,
		redemptionFailuresTotal,
		qrValidationsTotal,
		redeemLatencyMs,
		vouchersExpiringSoon,
	)
}

var (
	vouchersIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_issued_total",
			Help: "Total number of vouchers issued.",
		},
	)

	vouchersRedeemedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_redeemed_total",
			Help: "Total number of successful redemptions.",
		},
	)

	redemptionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_redemption_failures_total",
			Help: "Failed redemption attempts by reason.",
		},
		[]string{"reason"}, // 'not_found', 'already_redeemed', 'expired', 'wrong_partner'
	)

	qrValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_validations_total",
			Help: "QR payload validations by outcome.",
		},
		[]string{"result"}, // 'valid' or the rejection reason
	)

	redeemLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voucher_redeem_latency_ms",
			Help:    "Redemption path latency distribution in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
	)

	vouchersExpiringSoon = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vouchers_expiring_soon",
			Help: "Unredeemed vouchers expiring within the reminder window.",
		},
	)
)

func IncVouchersIssued() { vouchersIssuedTotal.Inc() }

func IncVouchersRedeemed() { vouchersRedeemedTotal.Inc() }

func IncRedemptionFailure(reason string) {
	redemptionFailuresTotal.WithLabelValues(reason).Inc()
}

func IncQRValidation(result string) {
	qrValidationsTotal.WithLabelValues(result).Inc()
}

func ObserveRedeemLatencyMs(ms float64) { redeemLatencyMs.Observe(ms) }

func SetVouchersExpiringSoon(n int) { vouchersExpiringSoon.Set(float64(n)) }

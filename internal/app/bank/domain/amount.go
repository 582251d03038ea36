package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// IsFinite 判斷金額是否為有限數字 (非 NaN、非 Inf)
func IsFinite(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// ValidAmount 存提款金額必須為有限且非負的數字
func ValidAmount(amount float64) bool {
	return IsFinite(amount) && amount >= 0
}

// ParseAmount 將使用者輸入的文字轉成金額
// 無法解析時回傳 NaN，交由 Account 的驗證拒絕
func ParseAmount(text string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}

// AmountOf 將未定型別的輸入 (JSON、gRPC Value) 轉成金額
// 只接受數字型別，字串、布林、nil 一律回傳 false
func AmountOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	default:
		return 0, false
	}
}

// FormatAmount 以最短形式輸出金額，例如 50、-40、0.1
func FormatAmount(amount float64) string {
	if !IsFinite(amount) {
		return strconv.FormatFloat(amount, 'g', -1, 64)
	}
	return decimal.NewFromFloat(amount).String()
}

// Package entity defines the domain models for the pricing feature.
package entity

// SymbolField is the field every ticker record is keyed by.
const SymbolField = "symbol"

// TickerRecord は1銘柄分のティッカー情報です。
// フィールド名をキー、APIから返された値を文字列のまま保持します（例: "price", "circulating_supply"）。
type TickerRecord map[string]string

// Symbol は銘柄シンボル（例: "ETH"）を返します。
func (r TickerRecord) Symbol() string {
	return r[SymbolField]
}

// Project は指定されたフィールドのみを持つ新しいTickerRecordを返します。
// レコードに存在しないフィールドは結果に含まれません。
func (r TickerRecord) Project(fields []string) TickerRecord {
	out := make(TickerRecord, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// TickerTable は銘柄シンボルからTickerRecordへのマッピングです。
// キーは大文字小文字を区別します。
type TickerTable map[string]TickerRecord

// Project はすべてのレコードにProjectを適用した新しいTickerTableを返します。
func (t TickerTable) Project(fields []string) TickerTable {
	out := make(TickerTable, len(t))
	for sym, rec := range t {
		out[sym] = rec.Project(fields)
	}
	return out
}

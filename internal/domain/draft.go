package domain

import "time"

// DraftSale — припаркованная (отложенная) продажа: снимок незавершённой корзины.
// Жизненный цикл: создаётся только из непустой корзины операцией park,
// удаляется при успешном resume или явном discard. Никогда не мутируется
// на месте — resume порождает свежую корзину из снимка.
type DraftSale struct {
	// ID — уникальный идентификатор черновика.
	ID string `json:"id"`
	// Cart — глубокий снимок корзины на момент парковки.
	Cart Cart `json:"cart"`
	// Label — необязательная пометка кассира.
	Label string `json:"label,omitempty"`
	// TerminalID — терминал, с которого продажа была припаркована.
	TerminalID string `json:"terminal_id,omitempty"`
	// ParkedAt — момент парковки; список черновиков сортируется по нему по убыванию.
	ParkedAt time.Time `json:"parked_at"`
}

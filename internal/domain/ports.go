package domain

// CatalogProvider поставляет позиции каталога. Ядро читает каталог и никогда
// не пишет в него; снимок позиции живёт не дольше текущей корзины.
type CatalogProvider interface {
	// ListItems возвращает все позиции каталога.
	ListItems() ([]Item, error)
	// GetItem возвращает позицию или ErrItemNotFound.
	GetItem(id string) (Item, error)
	// ListCategories возвращает известные категории в стабильном порядке.
	ListCategories() ([]string, error)
}

// Directory — справочник покупателей и групп, read-only для ядра.
type Directory interface {
	// GetCustomer возвращает покупателя или ErrCustomerNotFound.
	GetCustomer(id string) (Customer, error)
	// GetGroup возвращает группу или ErrGroupNotFound.
	GetGroup(id string) (CustomerGroup, error)
	// ListGroups возвращает все группы.
	ListGroups() ([]CustomerGroup, error)
}

// ConnectivityMonitor сообщает текущее состояние связи.
// Ядро опрашивает значение в момент финализации; события переходов опциональны.
type ConnectivityMonitor interface {
	IsOnline() bool
}

// DraftRepository хранит припаркованные продажи, ключ — id черновика.
// Хранилище разделяется несколькими терминалами, поэтому Take обязан быть
// атомарной операцией read-and-remove: из двух конкурентных resume по одному
// id ровно один получает черновик, второй — ErrDraftNotFound.
type DraftRepository interface {
	// Put сохраняет черновик.
	Put(draft DraftSale) error
	// List возвращает черновики, отсортированные по ParkedAt по убыванию.
	List() ([]DraftSale, error)
	// Take атомарно извлекает и удаляет черновик или возвращает ErrDraftNotFound.
	Take(id string) (DraftSale, error)
	// Delete удаляет черновик; отсутствие — ErrDraftNotFound.
	Delete(id string) error
}

// ReceiptRepository хранит запечатанные чеки, включая очередь офлайн-чеков,
// ожидающих синхронизации.
type ReceiptRepository interface {
	// Create сохраняет новый чек; повторный id — ErrReceiptExists.
	Create(receipt Receipt) error
	// Get возвращает чек или ErrReceiptNotFound.
	Get(id string) (Receipt, error)
	// PullQueued возвращает офлайн-чеки в порядке создания, не больше limit.
	PullQueued(limit int) ([]Receipt, error)
	// MarkSynced помечает офлайн-чек переданным леджеру.
	MarkSynced(id string) error
	// MarkFailed помечает чек как не прошедший синхронизацию.
	MarkFailed(id string) error
	// Stats возвращает состояние очереди синхронизации.
	Stats() (QueueStats, error)
}

// LedgerService — внешний коллаборатор, принимающий запечатанные чеки.
// Commit выполняется синхронно при наличии связи и возвращает id,
// присвоенный чеку в момент фиксации.
type LedgerService interface {
	Commit(receipt Receipt) (string, error)
}

// ReceiptPublisher передаёт чек внешним потребителям (back-office, леджер).
// Реализация обязана быть идемпотентной по id чека.
type ReceiptPublisher interface {
	Publish(receipt Receipt) error
}

package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu           UserState = "main_menu"            // В главном меню
	StateAwaitingFrontPhoto UserState = "awaiting_front_photo" // Ожидание фото экрана
	StateAwaitingBackPhoto  UserState = "awaiting_back_photo"  // Ожидание фото задней крышки
	StateProcessing         UserState = "processing"           // Обработка снимков
)

// User представляет пользователя бота
type User struct {
	ID     int64           // Telegram User ID
	ChatID int64           // Telegram Chat ID
	State  UserState       // Текущее состояние пользователя
	Photos map[View][]byte // Снимки текущей проверки
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Photos: make(map[View][]byte),
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// AttachPhoto запоминает снимок ракурса для текущей проверки
func (u *User) AttachPhoto(view View, data []byte) {
	if u.Photos == nil {
		u.Photos = make(map[View][]byte)
	}
	u.Photos[view] = data
}

// ResetPhotos забывает снимки незавершённой проверки
func (u *User) ResetPhotos() {
	u.Photos = make(map[View][]byte)
}

// Clone возвращает копию пользователя; байты снимков не копируются
func (u *User) Clone() *User {
	c := *u
	c.Photos = make(map[View][]byte, len(u.Photos))
	for view, data := range u.Photos {
		c.Photos[view] = data
	}
	return &c
}

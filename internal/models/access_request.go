package models

import "time"

// AccessRequest заявка ветеринара на доступ к платформе (demande d'accès).
// Создаётся публичной формой, читается администратором и ровно один раз
// используется для создания учётной записи.
type AccessRequest struct {
	ID             int64     // Уникальный идентификатор
	Nom            string    // Фамилия
	Prenom         string    // Имя
	Email          string    // Электронная почта (уникальная для заявок)
	Telephone      string    // Телефон
	AdresseCabinet string    // Адрес клиники
	NumVeterinaire string    // Номер лицензии ветеринара
	DateSoumission time.Time // Момент подачи заявки
}

// DummyAccessRequest используется для приёма данных заявки из JSON-запроса
// до их валидации и преобразования в AccessRequest.
type DummyAccessRequest struct {
	Nom            string `json:"nom" validate:"required"`
	Prenom         string `json:"prenom" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Telephone      string `json:"telephone" validate:"required"`
	AdresseCabinet string `json:"adresseCabinet" validate:"required"`
	NumVeterinaire string `json:"numVeterinaire" validate:"required"`
}

// AccessRequestView представление заявки для админского списка.
type AccessRequestView struct {
	ID             int64     `json:"id"`
	Nom            string    `json:"nom"`
	Prenom         string    `json:"prenom"`
	Email          string    `json:"email"`
	Telephone      string    `json:"telephone"`
	AdresseCabinet string    `json:"adresseCabinet"`
	NumVeterinaire string    `json:"numVeterinaire"`
	DateSoumission time.Time `json:"dateSoumission"`
}

// View собирает AccessRequestView из доменной модели.
func (r *AccessRequest) View() AccessRequestView {
	return AccessRequestView{
		ID:             r.ID,
		Nom:            r.Nom,
		Prenom:         r.Prenom,
		Email:          r.Email,
		Telephone:      r.Telephone,
		AdresseCabinet: r.AdresseCabinet,
		NumVeterinaire: r.NumVeterinaire,
		DateSoumission: r.DateSoumission,
	}
}

package holiday

type CreateHolidayRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Recurring bool   `json:"recurring"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

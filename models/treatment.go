package models

// TreatmentCategory groups treatments on the catalog page.
type TreatmentCategory struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Slug         string `bson:"slug" json:"slug"`
	Description  string `bson:"description" json:"description"`
	DisplayOrder int    `bson:"displayOrder" json:"displayOrder"`
}

// Treatment is reference data priced in whole currency units.
type Treatment struct {
	ID              string   `bson:"id" json:"id"`
	CategoryID      string   `bson:"categoryId" json:"categoryId"`
	Name            string   `bson:"name" json:"name"`
	Slug            string   `bson:"slug" json:"slug"`
	Description     string   `bson:"description" json:"description"`
	Price           int64    `bson:"price" json:"price"`
	DurationMinutes int      `bson:"durationMinutes" json:"durationMinutes"`
	Benefits        []string `bson:"benefits" json:"benefits"`

	Category *TreatmentCategory `bson:"-" json:"category,omitempty"`
}

// CategoryWithTreatments is the catalog listing shape.
type CategoryWithTreatments struct {
	TreatmentCategory
	Treatments []Treatment `json:"treatments"`
}

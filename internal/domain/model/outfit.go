package model

// OutfitRequest describes what the user wants an outfit for.
type OutfitRequest struct {
	Occasion string
	Weather  string
	Style    string
}

// Outfit is a backend-recommended combination of wardrobe items with
// free-form styling advice. ItemIDs reference ClothingItem.RemoteID.
type Outfit struct {
	ItemIDs  []string
	Advice   string
	Occasion string
}

// TryOnRequest asks the backend to render selected garments onto a person
// photo. ModelImageURL points at a previously uploaded photo.
type TryOnRequest struct {
	ModelImageURL string
	ItemIDs       []string
}

// TryOnResult is the generated try-on image.
type TryOnResult struct {
	ImageURL string
	TaskID   string
}

// ProStatus reports whether the account has an active pro subscription.
type ProStatus struct {
	Active bool
	Plan   string
}

// Package catalog holds the static career-category reference data for the
// kiosk. The catalog is loaded once at startup and is immutable for the life
// of a session.
package catalog

// CategoryID is the short stable code identifying one career track.
type CategoryID string

// The full catalog universe. Scoring logic may only ever emit these codes.
const (
	AutoMechanics      CategoryID = "au"
	ElectricVehicles   CategoryID = "ev"
	ElectricalPower    CategoryID = "ep"
	Electronics        CategoryID = "el"
	Construction       CategoryID = "co"
	Architecture       CategoryID = "ar"
	ComputerTechnology CategoryID = "ct"
	InformationTech    CategoryID = "it"
	Accounting         CategoryID = "ac"
	Marketing          CategoryID = "mk"
	DigitalBusiness    CategoryID = "dt"
	Tourism            CategoryID = "tg"
	HotelManagement    CategoryID = "hm"
)

// CareerCategory is one entry of the career catalog shown on the kiosk.
type CareerCategory struct {
	ID          CategoryID `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	NameTH      string     `json:"nameTh"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	Category    string     `json:"category"`
}

// Catalog is an ordered, immutable set of career categories.
type Catalog struct {
	entries []CareerCategory
	byID    map[CategoryID]CareerCategory
}

// New builds a catalog from entries, indexing them by ID. Later duplicates of
// an ID are ignored.
func New(entries []CareerCategory) *Catalog {
	c := &Catalog{
		entries: make([]CareerCategory, 0, len(entries)),
		byID:    make(map[CategoryID]CareerCategory, len(entries)),
	}
	for _, e := range entries {
		if _, exists := c.byID[e.ID]; exists {
			continue
		}
		c.entries = append(c.entries, e)
		c.byID[e.ID] = e
	}
	return c
}

// All returns the catalog entries in their fixed display order.
func (c *Catalog) All() []CareerCategory {
	out := make([]CareerCategory, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByID looks up one category. Callers must handle ok=false; a ranking can
// reference an ID that an admin has since unpublished.
func (c *Catalog) ByID(id CategoryID) (CareerCategory, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Universe returns every known category ID in catalog order.
func (c *Catalog) Universe() []CategoryID {
	ids := make([]CategoryID, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ID
	}
	return ids
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Default returns the built-in catalog of the college's 13 programs. It is
// used to seed the document store on first boot and as the fallback when the
// store is unreachable.
func Default() *Catalog {
	return New([]CareerCategory{
		{ID: AutoMechanics, Code: "AU", Name: "Automotive Mechanics", NameTH: "ช่างยนต์", Description: "Engine systems, diagnostics and vehicle maintenance", Icon: "🔧", Color: "#e74c3c", Category: "Industrial"},
		{ID: ElectricVehicles, Code: "EV", Name: "Electric Vehicle Technology", NameTH: "เทคโนโลยียานยนต์ไฟฟ้า", Description: "EV drivetrains, batteries and charging infrastructure", Icon: "⚡", Color: "#27ae60", Category: "Industrial"},
		{ID: ElectricalPower, Code: "EP", Name: "Electrical Power", NameTH: "ช่างไฟฟ้ากำลัง", Description: "Power distribution, motors and industrial wiring", Icon: "💡", Color: "#f39c12", Category: "Industrial"},
		{ID: Electronics, Code: "EL", Name: "Electronics", NameTH: "ช่างอิเล็กทรอนิกส์", Description: "Circuits, embedded systems and repair", Icon: "📟", Color: "#8e44ad", Category: "Industrial"},
		{ID: Construction, Code: "CO", Name: "Construction", NameTH: "ช่างก่อสร้าง", Description: "Building techniques, surveying and site management", Icon: "🏗️", Color: "#d35400", Category: "Industrial"},
		{ID: Architecture, Code: "AR", Name: "Architecture", NameTH: "สถาปัตยกรรม", Description: "Architectural drafting, modeling and design", Icon: "📐", Color: "#2c3e50", Category: "Industrial"},
		{ID: ComputerTechnology, Code: "CT", Name: "Computer Technology", NameTH: "ช่างเทคนิคคอมพิวเตอร์", Description: "Hardware, networks and system maintenance", Icon: "🖥️", Color: "#16a085", Category: "Industrial"},
		{ID: InformationTech, Code: "IT", Name: "Information Technology", NameTH: "เทคโนโลยีสารสนเทศ", Description: "Software, data and IT services", Icon: "💻", Color: "#2980b9", Category: "Commerce"},
		{ID: Accounting, Code: "AC", Name: "Accounting", NameTH: "การบัญชี", Description: "Bookkeeping, taxation and financial reporting", Icon: "🧮", Color: "#7f8c8d", Category: "Commerce"},
		{ID: Marketing, Code: "MK", Name: "Marketing", NameTH: "การตลาด", Description: "Branding, sales and digital campaigns", Icon: "📣", Color: "#c0392b", Category: "Commerce"},
		{ID: DigitalBusiness, Code: "DT", Name: "Digital Business Technology", NameTH: "เทคโนโลยีธุรกิจดิจิทัล", Description: "E-commerce, office systems and digital media", Icon: "📱", Color: "#9b59b6", Category: "Commerce"},
		{ID: Tourism, Code: "TG", Name: "Tourism", NameTH: "การท่องเที่ยว", Description: "Tour operations, guiding and hospitality services", Icon: "🧳", Color: "#1abc9c", Category: "Commerce"},
		{ID: HotelManagement, Code: "HM", Name: "Hotel Management", NameTH: "การโรงแรม", Description: "Front office, housekeeping and food service", Icon: "🏨", Color: "#e67e22", Category: "Commerce"},
	})
}

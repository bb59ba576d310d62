// 📁 internal/discovery/usb/database.go - USB Printer Vendor Database
package usb

import (
	"github.com/google/gousb"
)

// VendorDatabase names known receipt and fiscal printer vendors
type VendorDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Name     string
	products map[gousb.ID]string
}

// NewVendorDatabase creates and initializes the vendor database
func NewVendorDatabase() *VendorDatabase {
	db := &VendorDatabase{
		vendors: make(map[gousb.ID]*VendorInfo),
	}

	db.AddVendor(0x04B8, "EPSON", map[gousb.ID]string{
		0x0202: "TM-T88IV",
		0x0203: "TM-T88V",
		0x0214: "TM-T88VI",
		0x0215: "TM-T20III",
		0x0E15: "TM-T20II",
		0x0E28: "TM-U220",
	})
	db.AddVendor(0x0519, "STAR", map[gousb.ID]string{
		0x0001: "TSP143III",
		0x0003: "TSP654II",
	})
	db.AddVendor(0x1504, "BIXOLON", map[gousb.ID]string{
		0x0006: "SRP-330II",
		0x0007: "SRP-350III",
	})
	db.AddVendor(0x1CBE, "CITIZEN", nil)
	db.AddVendor(0x0483, "HKA", nil)
	db.AddVendor(0x0DD4, "CUSTOM", nil)

	return db
}

// AddVendor adds or replaces a vendor
func (db *VendorDatabase) AddVendor(vendorID gousb.ID, name string, products map[gousb.ID]string) {
	if products == nil {
		products = make(map[gousb.ID]string)
	}
	db.vendors[vendorID] = &VendorInfo{Name: name, products: products}
}

// IsKnownVendor checks if a vendor ID is in the database
func (db *VendorDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	_, exists := db.vendors[vendorID]
	return exists
}

// Identify returns vendor and model names, empty when unknown
func (db *VendorDatabase) Identify(vendorID, productID gousb.ID) (vendor, model string) {
	info, ok := db.vendors[vendorID]
	if !ok {
		return "", ""
	}
	return info.Name, info.products[productID]
}

package entry

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OtherCategory is the free-form sentinel; it is the only category that carries content.
const OtherCategory = "其他"

var defaultCategories = []string{
	"电脑硬件维修", "电脑软件维修类", "打印机维护", "网络设备维护",
	"安防设备维护", "服务器维护", "硬件测试", "软件测试",
	"OA后台业务维护", "ERP维护", "PLM维护", "CRM维护", "加密系统维护",
	"SMB维护", "云平台业务维护", "电话系统维护", "投影仪维修调试",
	"音响维修调试", "电路维修调试", "咨询服务", "系统重装", "食堂打卡机", OtherCategory,
}

// Catalog is the fixed, ordered list of recognised categories.
type Catalog []string

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() Catalog {
	c := make(Catalog, len(defaultCategories))
	copy(c, defaultCategories)
	return c
}

// NewCatalog normalises names, drops blanks and duplicates, and makes sure
// OtherCategory is the last entry.
func NewCatalog(names []string) Catalog {
	seen := make(map[string]bool, len(names)+1)
	c := make(Catalog, 0, len(names)+1)
	for _, name := range names {
		name = NormalizeCategory(name)
		if name == "" || name == OtherCategory || seen[name] {
			continue
		}
		seen[name] = true
		c = append(c, name)
	}
	return append(c, OtherCategory)
}

// Contains reports whether category is part of the catalog.
func (c Catalog) Contains(category string) bool {
	category = NormalizeCategory(category)
	for _, name := range c {
		if name == category {
			return true
		}
	}
	return false
}

// IsOther reports whether category is the free-form sentinel.
func IsOther(category string) bool {
	return NormalizeCategory(category) == OtherCategory
}

// NormalizeCategory trims surrounding whitespace and applies Unicode NFC so that
// visually identical names submitted from different devices compare equal.
func NormalizeCategory(category string) string {
	return norm.NFC.String(strings.TrimSpace(category))
}

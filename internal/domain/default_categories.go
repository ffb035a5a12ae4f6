package domain

import "github.com/google/uuid"

type defaultCategory struct {
	name     string
	kind     CategoryKind
	priority CategoryPriority
}

var defaultCategories = []defaultCategory{
	// Domestic
	{"Moradia", CategoryKindDomestic, CategoryPriorityEssential},
	{"Alimentação", CategoryKindDomestic, CategoryPriorityEssential},
	{"Transporte", CategoryKindDomestic, CategoryPriorityEssential},
	{"Saúde", CategoryKindDomestic, CategoryPriorityEssential},
	{"Educação", CategoryKindDomestic, CategoryPriorityImportant},
	{"Lazer", CategoryKindDomestic, CategoryPriorityCuttable},
	{"Contas", CategoryKindDomestic, CategoryPriorityEssential},
	{"Assinaturas", CategoryKindDomestic, CategoryPriorityImportant},
	{"Imprevistos", CategoryKindDomestic, CategoryPriorityEssential},

	// Commercial
	{"Fornecedores", CategoryKindCommercial, CategoryPriorityEssential},
	{"Marketing", CategoryKindCommercial, CategoryPriorityImportant},
	{"Operação", CategoryKindCommercial, CategoryPriorityEssential},
	{"Impostos", CategoryKindCommercial, CategoryPriorityEssential},
	{"Ferramentas", CategoryKindCommercial, CategoryPriorityImportant},
	{"Transporte (Comercial)", CategoryKindCommercial, CategoryPriorityImportant},
	{"Pró-labore", CategoryKindCommercial, CategoryPriorityEssential},
	{"Estoque", CategoryKindCommercial, CategoryPriorityEssential},
	{"Serviços", CategoryKindCommercial, CategoryPriorityEssential},
}

// DefaultCategories returns the starter category set for a new user.
// Each call returns fresh values with new IDs.
func DefaultCategories(userID uuid.UUID) []*Category {
	out := make([]*Category, len(defaultCategories))
	for i, d := range defaultCategories {
		out[i] = &Category{
			ID:       uuid.New(),
			UserID:   userID,
			Name:     d.name,
			Kind:     d.kind,
			Priority: d.priority,
		}
	}
	return out
}

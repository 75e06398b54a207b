package materials

import (
	"fmt"
	"strings"

	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

func (s *Service) validate(m Material) error {
	if strings.TrimSpace(m.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	switch m.MaterialType {
	case TypeRaw, TypePackaging, TypeSubMaterial:
	default:
		return fmt.Errorf("%w: material_type %q", shared.ErrValidation, m.MaterialType)
	}
	if m.StandardUnitPrice.IsNegative() {
		return fmt.Errorf("%w: standard_unit_price must not be negative", shared.ErrValidation)
	}
	return nil
}

package billing

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// MaxClientSearchResults tope de sugerencias del autocompletado.
const MaxClientSearchResults = 10

// SearchKey normaliza un nombre para búsqueda: minúsculas, sin tildes ni espacios repetidos.
// "  José  PÉREZ " → "jose perez".
func SearchKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ClientUseCase casos de uso para clientes frecuentes.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Save crea el cliente o actualiza sus datos si el documento ya existe.
func (uc *ClientUseCase) Save(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	if _, ok := pkgsiat.IdentityDocumentTypes[in.DocType]; !ok {
		return nil, fmt.Errorf("%w: tipo de documento %d desconocido", domain.ErrInvalidInput, in.DocType)
	}
	in.DocNumber = strings.TrimSpace(in.DocNumber)
	in.Name = strings.TrimSpace(in.Name)
	if in.DocNumber == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: número de documento y nombre son obligatorios", domain.ErrInvalidInput)
	}
	now := time.Now()
	client := &entity.Client{
		ID:         uuid.New().String(),
		DocType:    in.DocType,
		DocNumber:  in.DocNumber,
		Complement: strings.TrimSpace(in.Complement),
		Name:       in.Name,
		SearchKey:  SearchKey(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Save(ctx, client); err != nil {
		return nil, persistence("guardar cliente", err)
	}
	out := toClientResponse(client)
	return &out, nil
}

// Search sugiere clientes por prefijo de documento o por nombre (sin distinguir tildes),
// los facturados más recientemente primero.
func (uc *ClientUseCase) Search(ctx context.Context, term string) ([]dto.ClientResponse, error) {
	key := SearchKey(term)
	if key == "" {
		return []dto.ClientResponse{}, nil
	}
	list, err := uc.repo.Search(ctx, key, MaxClientSearchResults)
	if err != nil {
		return nil, persistence("buscar clientes", err)
	}
	return toClientResponses(list), nil
}

// GetByDocument devuelve el cliente con ese documento o domain.ErrNotFound.
func (uc *ClientUseCase) GetByDocument(ctx context.Context, docType int, docNumber, complement string) (*dto.ClientResponse, error) {
	c, err := uc.repo.GetByDocument(ctx, docType, strings.TrimSpace(docNumber), strings.TrimSpace(complement))
	if err != nil {
		return nil, persistence("obtener cliente", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out := toClientResponse(c)
	return &out, nil
}

// List lista clientes paginados.
func (uc *ClientUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.ClientResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, persistence("listar clientes", err)
	}
	return toClientResponses(list), nil
}

func toClientResponses(list []*entity.Client) []dto.ClientResponse {
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toClientResponse(c *entity.Client) dto.ClientResponse {
	out := dto.ClientResponse{
		ID:           c.ID,
		DocType:      c.DocType,
		DocNumber:    c.DocNumber,
		Complement:   c.Complement,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		InvoiceCount: c.InvoiceCount,
	}
	if c.LastInvoiceAt != nil {
		out.LastInvoiceAt = c.LastInvoiceAt.Format(time.RFC3339)
	}
	return out
}

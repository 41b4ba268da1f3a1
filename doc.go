// Package routegen compiles route directives on Go types into HTTP
// registration code.
//
// A type becomes an endpoint group when it, or a type it embeds, carries a
// group directive. Its exported methods become endpoints, with the HTTP
// verb and path taken from a verb directive or inferred from the method
// name:
//
//	//route:group "/api/[controller]"
//	//route:authorize Policy="Staff"
//	type ProductService struct{ store Store }
//
//	func (s *ProductService) GetList(ctx context.Context) ([]Product, error)   // GET /api/product/list
//	func (s *ProductService) CreateProduct(ctx context.Context, p Product) error // POST /api/product/product
//
//	//route:get "/{id}"
//	//route:anonymous
//	func (s *ProductService) Find(ctx context.Context, id string) (Product, error) // GET /api/product/{id}
//
// Generate a chi registration file with the fluent API:
//
//	result, err := routegen.FromPackages("./api/...").
//	    Manifest("routes.json").
//	    ToDir(ctx, "./api/routes")
//
// or with the routegen command:
//
//	routegen gen --out ./api/routes ./api/...
//
// Route conflicts (two methods of one group on the same verb and path) are
// reported as diagnostics and logged; they only fail the run in strict mode.
package routegen

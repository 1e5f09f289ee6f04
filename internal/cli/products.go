package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"storeadmin/internal/client"
	"storeadmin/internal/models"
	"storeadmin/internal/services"
)

// getTextWithDefault is an indirection used to facilitate testing.
var getTextWithDefault = GetTextWithDefault

// productsPerPage matches the page size of the storefront listing.
const productsPerPage = 8

// Products fetches the catalog and shows the current page of the filtered
// view. When the server is unreachable the last fetched collection is shown.
func (a *App) Products(ctx context.Context) error {
	if !a.navigate("/products") {
		return nil
	}

	if err := a.productService.Fetch(ctx); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			printlnFn("Session expired. Please log in again.")
			return err
		}
		log.Println(err.Error())
		printlnFn("Showing cached products")
	}

	a.showProductPage()
	return nil
}

func (a *App) showProductPage() {
	items, totalPages := a.productService.Page(a.page, productsPerPage)
	if totalPages == 0 {
		printlnFn("No products found")
		return
	}
	if a.page > totalPages {
		a.page = totalPages
		items, _ = a.productService.Page(a.page, productsPerPage)
	}

	for _, p := range items {
		stock := "out of stock"
		if p.InStock() {
			stock = fmt.Sprintf("qty %d", p.Quantity)
		}
		printlnFn(fmt.Sprintf("%4d  %-30s %-15s %8.2f  %s", p.ID, p.Name, p.Category, float64(p.Price)/100, stock))
	}
	printlnFn(fmt.Sprintf("Page %d/%d", a.page, totalPages))

	if f := a.productService.CurrentFilters(); f != (services.Filters{}) {
		printlnFn(fmt.Sprintf("Filters: search=%q instock=%v category=%q", f.Search, f.InStock, f.Category))
	}
}

// SetPage jumps to the requested page of the current filtered view.
func (a *App) SetPage(ctx context.Context, args []string) error {
	if !a.navigate("/products") {
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		printlnFn("Usage: page <n>")
		return nil
	}
	a.page = n
	a.showProductPage()
	return nil
}

// Filter adjusts the catalog predicates. Changing a filter resets the
// pagination back to the first page.
func (a *App) Filter(ctx context.Context, args []string) error {
	if !a.navigate("/products") {
		return nil
	}

	if len(args) == 0 {
		printlnFn("Usage: filter search <text> | instock on|off | category <name> | reset")
		return nil
	}

	f := a.productService.CurrentFilters()

	switch args[0] {
	case "search":
		f.Search = ""
		if len(args) > 1 {
			f.Search = args[1]
		}
	case "instock":
		f.InStock = len(args) > 1 && args[1] == "on"
	case "category":
		f.Category = ""
		if len(args) > 1 {
			f.Category = args[1]
		}
	case "reset":
		a.productService.ResetFilters()
		a.page = 1
		a.showProductPage()
		return nil
	default:
		printlnFn("Usage: filter search <text> | instock on|off | category <name> | reset")
		return nil
	}

	a.productService.SetFilters(f)
	a.page = 1
	a.showProductPage()
	return nil
}

// AddProduct interactively collects product fields and creates the product.
// The local collection picks it up only after the server confirms.
func (a *App) AddProduct(ctx context.Context) error {
	if !a.navigate("/products") {
		return nil
	}

	p, err := a.promptProduct(ctx, nil)
	if err != nil {
		return err
	}

	created, err := a.productService.Add(ctx, *p)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Created product %d", created.ID))
	return nil
}

// EditProduct updates a product. Empty answers keep the current values.
func (a *App) EditProduct(ctx context.Context, args []string) error {
	if !a.navigate("/products") {
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: edit <id>")
		return nil
	}

	current, err := a.productService.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	p, err := a.promptProduct(ctx, current)
	if err != nil {
		return err
	}
	p.ID = id

	if err := a.productService.Update(ctx, *p); err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn("Updated")
	return nil
}

// DeleteProduct removes a product after server confirmation.
func (a *App) DeleteProduct(ctx context.Context, args []string) error {
	if !a.navigate("/products") {
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: del <id>")
		return nil
	}

	if err := a.productService.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn("Deleted")
	return nil
}

// promptProduct collects product fields interactively. When current is nil
// all fields start empty; otherwise empty answers keep existing values.
func (a *App) promptProduct(ctx context.Context, current *models.Product) (*models.Product, error) {
	base := models.Product{}
	if current != nil {
		base = *current
	}

	name, err := getTextWithDefault(a.reader, "Name", base.Name, os.Stdout)
	if err != nil {
		return nil, err
	}

	description, err := getTextWithDefault(a.reader, "Description", base.Description, os.Stdout)
	if err != nil {
		return nil, err
	}

	quantityStr, err := getTextWithDefault(a.reader, "Quantity", strconv.Itoa(base.Quantity), os.Stdout)
	if err != nil {
		return nil, err
	}
	quantity, err := strconv.Atoi(quantityStr)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}

	category, err := getTextWithDefault(a.reader, "Category", base.Category, os.Stdout)
	if err != nil {
		return nil, err
	}

	priceStr, err := getTextWithDefault(a.reader, "Price (cents)", strconv.Itoa(base.Price), os.Stdout)
	if err != nil {
		return nil, err
	}
	price, err := strconv.Atoi(priceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	return &models.Product{
		ID:          base.ID,
		Name:        name,
		Description: description,
		Quantity:    quantity,
		Category:    category,
		Price:       price,
	}, nil
}

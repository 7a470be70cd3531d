package validation

import (
	money "github.com/rezonia/etims-client/internal/decimal"
)

// ContractSales is the sales transaction contract name
const ContractSales = "saveTrnsSalesOsdc"

// SalesCanceledStatus is the salesSttsCd that marks a canceled sale
const SalesCanceledStatus = "03"

func salesReceipt(p Profile) *ObjectRule {
	return Object(
		Optional("custTin", p.TIN()),
		Optional("custMblNo", Text(0, 20)),
		Required("rcptPbctDt", DT14()),
		Optional("trdeNm", Text(0, 20)),
		Optional("adrs", Text(0, 200)),
		Optional("topMsg", Text(0, 20)),
		Optional("btmMsg", Text(0, 20)),
		Required("prchrAcptcYn", YesNo()),
	)
}

func salesItem() *ObjectRule {
	return Object(
		Required("itemSeq", Int(1, 999)),
		Optional("itemClsCd", Code10()),
		Required("itemCd", Text(1, 20)),
		Required("itemNm", Text(1, 200)),
		Optional("bcd", Text(0, 20)),
		Required("pkgUnitCd", Code5()),
		Required("pkg", Amount13()),
		Required("qtyUnitCd", Code5()),
		Required("qty", Amount13()),
		Required("prc", Amount18()),
		Required("splyAmt", Amount18()),
		Required("dcRt", DiscountRate()),
		Required("dcAmt", Amount18()),
		Optional("isrccCd", Code10()),
		Optional("isrccNm", Text(0, 100)),
		Optional("isrcRt", InsuranceRate()),
		Optional("isrcAmt", Amount18()),
		Required("taxTyCd", Code5()),
		Required("taxblAmt", Amount18()),
		Required("taxAmt", Amount18()),
		Required("totAmt", Amount18()),
	)
}

var taxBands = []string{"A", "B", "C", "D", "E"}

func banded(prefix string) []string {
	out := make([]string, len(taxBands))
	for i, b := range taxBands {
		out[i] = prefix + b
	}
	return out
}

func salesContract(p Profile) *Contract {
	fields := []Field{
		Required("tin", p.TIN()),
		Required("bhfId", BranchID()),
		Required("cmcKey", Text(1, 255)),
		Required("trdInvcNo", Text(1, 50)),
		Required("invcNo", InvoiceNo()),
		Required("orgInvcNo", InvoiceNo()),
		Optional("custTin", p.TIN()),
		Optional("custNm", Text(1, 60)),
		Required("rcptTyCd", Code5()),
		Optional("pmtTyCd", Code5()),
		Required("salesSttsCd", Code5()),
		Required("cfmDt", DT14()),
		Required("salesDt", DT8()),
		Optional("stockRlsDt", DT14()),
		Optional("cnclReqDt", DT14()),
		Optional("cnclDt", DT14()),
		Optional("rfdDt", DT14()),
		Optional("rfdRsnCd", Code5()),
		Required("totItemCnt", Int(0, 9999999999)),
	}
	for _, name := range banded("taxblAmt") {
		fields = append(fields, Required(name, Amount18()))
	}
	for _, name := range banded("taxRt") {
		fields = append(fields, Required(name, TaxRate()))
	}
	for _, name := range banded("taxAmt") {
		fields = append(fields, Required(name, Amount18()))
	}
	fields = append(fields,
		Required("totTaxblAmt", Amount18()),
		Required("totTaxAmt", Amount18()),
		Required("totAmt", Amount18()),
		Required("prchrAcptcYn", YesNo()),
		Optional("remark", Text(0, 400)),
		Required("regrId", Text(1, 20)),
		Required("regrNm", Text(1, 60)),
		Required("modrId", Text(1, 20)),
		Required("modrNm", Text(1, 60)),
		Required("receipt", salesReceipt(p)),
		Required("itemList", List(salesItem())),
	)

	tol := money.Tolerance
	return &Contract{
		Name:        ContractSales,
		Version:     p.Version,
		Description: "Sales transaction (TrnsSalesSaveWrReq)",
		Root:        Object(fields...),
		Cross: []CrossRule{
			LineTotal{List: "itemList", Total: "totAmt", Supply: "splyAmt", Discount: "dcAmt", Tax: "taxAmt", Tolerance: tol},
			DatePrefix{Field: "cfmDt", Ref: "salesDt", Length: 8},
			NotBefore{Fields: []string{"stockRlsDt", "cnclReqDt", "cnclDt", "rfdDt"}, Ref: "salesDt", Length: 8},
			ItemCount{Count: "totItemCnt", List: "itemList"},
			AggregateSum{Target: "totTaxblAmt", List: "itemList", Item: "taxblAmt", Tolerance: tol},
			AggregateSum{Target: "totTaxAmt", List: "itemList", Item: "taxAmt", Tolerance: tol},
			AggregateSum{Target: "totAmt", List: "itemList", Item: "totAmt", Tolerance: tol},
			ComponentSum{Target: "totTaxblAmt", Components: banded("taxblAmt"), Label: "taxblAmtA-E", Tolerance: tol},
			ComponentSum{Target: "totTaxAmt", Components: banded("taxAmt"), Label: "taxAmtA-E", Tolerance: tol},
			ConditionalPresence{
				Selector: "salesSttsCd",
				Values:   []string{SalesCanceledStatus},
				Fields:   []string{"cnclReqDt", "cnclDt"},
				State:    "canceled",
			},
		},
	}
}

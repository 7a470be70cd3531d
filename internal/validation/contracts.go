package validation

// Contract names
const (
	ContractInit            = "selectInitOsdcInfo"
	ContractLastRequest     = "lastReqOnly"
	ContractCustomerSearch  = "selectCustomer"
	ContractBranchCustomer  = "saveBhfCustomer"
	ContractBranchUser      = "saveBhfUser"
	ContractBranchInsurance = "saveBhfInsurance"
	ContractItem            = "saveItem"
	ContractItemComposition = "saveItemComposition"
	ContractImportItem      = "importItemUpdate"
	ContractStockMaster     = "saveStockMaster"
	ContractPurchase        = "insertTrnsPurchase"
	ContractStockIO         = "insertStockIO"
)

// Catalogue builds every OSCU contract for a schema profile
func Catalogue(p Profile) []*Contract {
	contracts := []*Contract{
		{
			Name:        ContractInit,
			Description: "Device initialization",
			Root: Object(
				Required("tin", p.TIN()),
				Required("bhfId", BranchID()),
				Required("dvcSrlNo", NonEmpty()),
			),
		},
		{
			Name:        ContractLastRequest,
			Description: "Incremental lookup since lastReqDt",
			Root:        Object(Required("lastReqDt", DT14())),
		},
		{
			Name:        ContractCustomerSearch,
			Description: "Customer lookup by tax id",
			Root:        Object(Required("custmTin", p.TIN())),
		},
		{
			Name:        ContractBranchCustomer,
			Description: "Branch customer registration",
			Root: Object(
				Required("custNo", NonEmpty()),
				Required("custTin", p.TIN()),
				Required("custNm", NonEmpty()),
				Required("useYn", YesNo()),
				Required("regrId", NonEmpty()),
				Required("regrNm", NonEmpty()),
				Optional("modrId", Str()),
				Optional("modrNm", Str()),
			),
		},
		{
			Name:        ContractBranchUser,
			Description: "Branch user account",
			Root: Object(
				Required("userId", NonEmpty()),
				Required("userNm", NonEmpty()),
				Required("pwd", NonEmpty()),
				Required("useYn", YesNo()),
				Required("regrId", NonEmpty()),
				Required("regrNm", NonEmpty()),
				Optional("modrId", Str()),
				Optional("modrNm", Str()),
			),
		},
		{
			Name:        ContractBranchInsurance,
			Description: "Branch insurance",
			Root: Object(
				Required("isrccCd", NonEmpty()),
				Required("isrccNm", NonEmpty()),
				Required("isrcRt", Dec().AtLeast("0")),
				Required("useYn", YesNo()),
				Required("regrId", NonEmpty()),
				Required("regrNm", NonEmpty()),
				Optional("modrId", Str()),
				Optional("modrNm", Str()),
			),
		},
		{
			Name:        ContractItem,
			Description: "Item master",
			Root: Object(
				Required("itemCd", NonEmpty()),
				Required("itemClsCd", NonEmpty()),
				Required("itemTyCd", NonEmpty()),
				Required("itemNm", NonEmpty()),
				Optional("itemStdNm", Str()),
				Required("orgnNatCd", Text(2, 5)),
				Required("pkgUnitCd", NonEmpty()),
				Required("qtyUnitCd", NonEmpty()),
				Required("taxTyCd", NonEmpty()),
				Required("dftPrc", Dec().AtLeast("0")),
				Optional("grpPrcL1", Dec()),
				Optional("grpPrcL2", Dec()),
				Optional("grpPrcL3", Dec()),
				Optional("grpPrcL4", Dec()),
				Optional("grpPrcL5", Dec()),
				Optional("btchNo", Str()),
				Optional("bcd", Str()),
				Optional("addInfo", Str()),
				Optional("sftyQty", Dec()),
				Required("isrcAplcbYn", YesNo()),
				Required("useYn", YesNo()),
				Required("regrId", NonEmpty()),
				Required("regrNm", NonEmpty()),
				Required("modrId", NonEmpty()),
				Required("modrNm", NonEmpty()),
			),
		},
		{
			Name:        ContractItemComposition,
			Description: "Item composition",
			Root: Object(
				Required("itemCd", NonEmpty()),
				Required("cpstItemCd", NonEmpty()),
				Required("cpstQty", Dec().Above("0")),
				Required("regrId", NonEmpty()),
				Required("regrNm", NonEmpty()),
				Optional("modrId", Str()),
				Optional("modrNm", Str()),
			),
		},
		{
			Name:        ContractImportItem,
			Description: "Imported item status update",
			Root: Object(
				Required("taskCd", NonEmpty()),
				Required("dclDe", FlexDate()),
				Required("itemSeq", IntMin(1)),
				Required("hsCd", Text(1, 17)),
				Required("itemClsCd", Text(1, 10)),
				Required("itemCd", Text(1, 20)),
				Required("imptItemSttsCd", NonEmpty()),
				Required("modrId", NonEmpty()),
				Required("modrNm", NonEmpty()),
				Optional("remark", Str()),
			),
		},
		{
			Name:        ContractStockMaster,
			Description: "Stock master quantity",
			Root: Object(
				Required("itemCd", Text(1, 20)),
				Required("rsdQty", Dec().AtLeast("0")),
				Required("regrId", Text(1, 20)),
				Required("regrNm", Text(1, 60)),
				Required("modrId", Text(1, 20)),
				Required("modrNm", Text(1, 60)),
			),
		},
		purchaseContract(p),
		stockIOContract(p),
		salesContract(p),
	}

	for _, c := range contracts {
		c.Version = p.Version
	}
	return contracts
}

func purchaseItem() *ObjectRule {
	return Object(
		Required("itemSeq", IntMin(1)),
		Required("itemCd", Text(1, 20)),
		Required("itemClsCd", Text(1, 10)),
		Required("itemNm", Text(1, 200)),
		Optional("bcd", Text(0, 20)),
		Optional("spplrItemClsCd", Text(0, 10)),
		Optional("spplrItemCd", Text(0, 20)),
		Optional("spplrItemNm", Text(0, 200)),
		Required("pkgUnitCd", Text(0, 5)),
		Required("pkg", Dec()),
		Required("qtyUnitCd", Text(0, 5)),
		Required("qty", Dec()),
		Required("prc", Dec()),
		Required("splyAmt", Dec()),
		Required("dcRt", Dec()),
		Required("dcAmt", Dec()),
		Required("taxblAmt", Dec()),
		Required("taxTyCd", Text(0, 5)),
		Required("taxAmt", Dec()),
		Required("totAmt", Dec()),
		Optional("itemExprDt", FlexDate()),
	)
}

func purchaseContract(p Profile) *Contract {
	fields := []Field{
		Optional("spplrTin", p.TINLength()),
		Required("invcNo", IntMin(0)),
		Required("orgInvcNo", IntMin(0)),
		Optional("spplrBhfId", BranchID()),
		Optional("spplrNm", Text(0, 60)),
		Optional("spplrInvcNo", IntMin(0)),
		Required("regTyCd", Text(1, 5)),
		Required("pchsTyCd", Text(1, 5)),
		Required("rcptTyCd", Text(1, 5)),
		Required("pmtTyCd", Text(1, 5)),
		Required("pchsSttsCd", Text(1, 5)),
		Optional("cfmDt", FlexDate()),
		Optional("wrhsDt", FlexDate()),
		Optional("cnclReqDt", FlexDate()),
		Optional("cnclDt", FlexDate()),
		Optional("rfdDt", FlexDate()),
		Optional("pchsDt", FlexDate()),
		Required("totItemCnt", IntMin(0)),
	}
	for _, prefix := range []string{"taxblAmt", "taxRt", "taxAmt"} {
		for _, name := range banded(prefix) {
			fields = append(fields, Required(name, Dec()))
		}
	}
	fields = append(fields,
		Required("totTaxblAmt", Dec()),
		Required("totTaxAmt", Dec()),
		Required("totAmt", Dec()),
		Optional("remark", Text(0, 400)),
		Required("regrId", Text(0, 20)),
		Required("regrNm", Text(0, 60)),
		Required("modrId", Text(0, 20)),
		Required("modrNm", Text(0, 60)),
		Required("itemList", List(purchaseItem())),
	)

	return &Contract{
		Name:        ContractPurchase,
		Description: "Purchase transaction",
		Root:        Object(fields...),
	}
}

func stockIOItem() *ObjectRule {
	return Object(
		Required("itemSeq", IntMin(1)),
		Required("itemCd", Text(1, 20)),
		Required("itemClsCd", Text(1, 10)),
		Required("itemNm", Text(1, 200)),
		Optional("bcd", Text(0, 20)),
		Required("pkgUnitCd", Text(0, 5)),
		Required("pkg", Dec()),
		Required("qtyUnitCd", Text(0, 5)),
		Required("qty", Dec()),
		Optional("itemExprDt", DT8()),
		Required("prc", Dec()),
		Required("splyAmt", Dec()),
		Required("totDcAmt", Dec()),
		Required("taxblAmt", Dec()),
		Required("taxTyCd", Text(0, 5)),
		Required("taxAmt", Dec()),
		Required("totAmt", Dec()),
	)
}

func stockIOContract(p Profile) *Contract {
	return &Contract{
		Name:        ContractStockIO,
		Description: "Stock in/out movement",
		Root: Object(
			Required("tin", p.TINLength()),
			Required("bhfId", BranchID()),
			Required("sarNo", IntMin(0)),
			Required("orgSarNo", IntMin(0)),
			Required("regTyCd", Text(1, 5)),
			Optional("custTin", p.TINLength()),
			Optional("custNm", Text(0, 100)),
			Optional("custBhfId", BranchID()),
			Required("sarTyCd", Text(1, 5)),
			Required("ocrnDt", DT8()),
			Required("totItemCnt", IntMin(0)),
			Required("totTaxblAmt", Dec()),
			Required("totTaxAmt", Dec()),
			Required("totAmt", Dec()),
			Optional("remark", Text(0, 400)),
			Required("regrId", Text(0, 20)),
			Required("regrNm", Text(0, 60)),
			Required("modrId", Text(0, 20)),
			Required("modrNm", Text(0, 60)),
			Required("itemList", List(stockIOItem())),
		),
	}
}

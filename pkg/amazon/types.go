package amazon

// Request payloads. Field order is the wire order.

type searchItemsRequest struct {
	Keywords    string   `json:"Keywords"`
	Resources   []string `json:"Resources"`
	SearchIndex string   `json:"SearchIndex"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

type getItemsRequest struct {
	ItemIDs     []string `json:"ItemIds"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

// Response documents, reduced to the fields that are normalized.

type searchItemsResponse struct {
	SearchResult *struct {
		Items            []item `json:"Items"`
		TotalResultCount int    `json:"TotalResultCount"`
	} `json:"SearchResult"`
}

type getItemsResponse struct {
	ItemsResult *struct {
		Items []item `json:"Items"`
	} `json:"ItemsResult"`
}

type item struct {
	ASIN     string    `json:"ASIN"`
	Images   *images   `json:"Images"`
	ItemInfo *itemInfo `json:"ItemInfo"`
	Offers   *offers   `json:"Offers"`
}

type images struct {
	Primary *struct {
		Large *imageSize `json:"Large"`
	} `json:"Primary"`
}

type imageSize struct {
	URL string `json:"URL"`
}

type itemInfo struct {
	Title *struct {
		DisplayValue string `json:"DisplayValue"`
	} `json:"Title"`
	Features *struct {
		DisplayValues []string `json:"DisplayValues"`
	} `json:"Features"`
}

type offers struct {
	Listings []listing `json:"Listings"`
}

type listing struct {
	Availability *struct {
		Message string `json:"Message"`
	} `json:"Availability"`
	DeliveryInfo *struct {
		IsPrimeEligible bool `json:"IsPrimeEligible"`
	} `json:"DeliveryInfo"`
	Price *struct {
		Amount        float64 `json:"Amount"`
		Currency      string  `json:"Currency"`
		DisplayAmount string  `json:"DisplayAmount"`
	} `json:"Price"`
}

package testutil

// SampleASIN is the fully populated item in the sample responses.
const SampleASIN = "B0CHX1W1XY"

// BareASIN is an item without ItemInfo, Images or Offers.
const BareASIN = "B000000000"

// SampleSearchItemsBody is a SearchItems response with one complete and one
// bare item.
const SampleSearchItemsBody = `{
  "SearchResult": {
    "Items": [
      {
        "ASIN": "B0CHX1W1XY",
        "DetailPageURL": "https://www.amazon.com/dp/B0CHX1W1XY?tag=tag-20",
        "Images": {"Primary": {"Large": {"URL": "https://m.media-amazon.com/images/I/71d7rfSl0wL._SL500_.jpg", "Height": 500, "Width": 500}}},
        "ItemInfo": {
          "Title": {"DisplayValue": "Apple iPhone 15 (128 GB) - Black", "Label": "Title", "Locale": "en_US"},
          "Features": {"DisplayValues": ["Dynamic Island", "48MP Main camera", "USB-C"], "Label": "Features", "Locale": "en_US"}
        },
        "Offers": {
          "Listings": [
            {
              "Availability": {"Message": "In Stock"},
              "Price": {"Amount": 799, "Currency": "USD", "DisplayAmount": "$799.00"}
            }
          ]
        }
      },
      {
        "ASIN": "B000000000"
      }
    ],
    "SearchURL": "https://www.amazon.com/s?k=iphone+15",
    "TotalResultCount": 2
  }
}`

// SampleGetItemsBody is a GetItems response for SampleASIN.
const SampleGetItemsBody = `{
  "ItemsResult": {
    "Items": [
      {
        "ASIN": "B0CHX1W1XY",
        "Images": {
          "Primary": {"Large": {"URL": "https://m.media-amazon.com/images/I/71d7rfSl0wL._SL500_.jpg"}},
          "Variants": [{"Large": {"URL": "https://m.media-amazon.com/images/I/variant._SL500_.jpg"}}]
        },
        "ItemInfo": {
          "Title": {"DisplayValue": "Apple iPhone 15 (128 GB) - Black"},
          "Features": {"DisplayValues": ["Dynamic Island", "48MP Main camera", "USB-C"]},
          "ProductInfo": {"Color": {"DisplayValue": "Black"}}
        },
        "Offers": {
          "Listings": [
            {
              "Availability": {"Message": "In Stock"},
              "DeliveryInfo": {"IsPrimeEligible": true},
              "Price": {"Amount": 799, "Currency": "USD", "DisplayAmount": "$799.00"}
            }
          ]
        }
      }
    ]
  }
}`

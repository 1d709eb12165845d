package shopify

const productFragment = `
fragment ProductFields on Product {
  id
  title
  description
  handle
  vendor
  productType
  createdAt
  tags
  priceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
  compareAtPriceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
  images(first: 5) {
    edges { node { url altText } }
  }
  variants(first: 20) {
    edges {
      node {
        id
        title
        price { amount currencyCode }
        compareAtPrice { amount currencyCode }
        availableForSale
        selectedOptions { name value }
      }
    }
  }
  options { name values }
  gender: metafield(namespace: "custom", key: "gender") { value }
  fragranceType: metafield(namespace: "custom", key: "fragrance_type") { value }
  notesFamily: metafield(namespace: "custom", key: "notes_family") { value }
  isSignature: metafield(namespace: "custom", key: "is_signature") { value }
  season: metafield(namespace: "custom", key: "season") { value }
}
`

const productsQuery = productFragment + `
query GetProducts($first: Int!, $after: String, $query: String, $sortKey: ProductSortKeys, $reverse: Boolean) {
  products(first: $first, after: $after, query: $query, sortKey: $sortKey, reverse: $reverse) {
    edges { node { ...ProductFields } }
    pageInfo { hasNextPage endCursor }
  }
}
`

const productByHandleQuery = productFragment + `
query GetProductByHandle($handle: String!) {
  productByHandle(handle: $handle) { ...ProductFields }
}
`

const vendorsQuery = `
query GetVendors($first: Int!) {
  products(first: $first) {
    edges { node { vendor } }
  }
}
`

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
      totalQuantity
    }
    userErrors { field message }
  }
}
`

// vendorScanSize is how many products are scanned for distinct vendors
const vendorScanSize = 250

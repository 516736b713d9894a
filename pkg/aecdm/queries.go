package aecdm

const hubsQuery = `
query GetHubs($cursor: String, $limit: Int) {
  hubs(pagination: {cursor: $cursor, limit: $limit}) {
    pagination { cursor }
    results { id name }
  }
}`

const projectsQuery = `
query GetProjects($hubId: ID!, $cursor: String, $limit: Int) {
  projects(hubId: $hubId, pagination: {cursor: $cursor, limit: $limit}) {
    pagination { cursor }
    results { id name }
  }
}`

const elementGroupsQuery = `
query GetElementGroupsByProject($projectId: ID!, $cursor: String, $limit: Int) {
  elementGroupsByProject(projectId: $projectId, pagination: {cursor: $cursor, limit: $limit}) {
    pagination { cursor }
    results {
      id
      name
      alternativeIdentifiers { fileVersionUrn }
    }
  }
}`

const elementsQuery = `
query GetElementsByElementGroupWithFilter($elementGroupId: ID!, $filter: String!, $cursor: String, $limit: Int) {
  elementsByElementGroup(elementGroupId: $elementGroupId, filter: {query: $filter}, pagination: {cursor: $cursor, limit: $limit}) {
    pagination { cursor }
    results {
      id
      name
      alternativeIdentifiers { externalElementId }
      properties {
        results {
          name
          value
        }
      }
    }
  }
}`

const elementGeometryQuery = `
query GetElementGeometry($elementId: ID!) {
  elementAtTip(elementId: $elementId) {
    id
    name
    geometry {
      meshes { vertices }
    }
  }
}`
